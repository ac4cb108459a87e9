// Package sanitizer cleans user-submitted text before it is stored.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

// StripHTML removes all markup and returns plain text with surrounding
// whitespace trimmed. Entities are decoded, so "a&b" survives unchanged.
func StripHTML(s string) string {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// Fields applies StripHTML to each pointed-to string.
func Fields(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = StripHTML(*f)
		}
	}
}
