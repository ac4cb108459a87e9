package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weiye465/Kindle-Transfer-App/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips script injection", input: `me@kindle.com<script>alert('xss')</script>`, expected: "me@kindle.com"},
		{name: "strips tags keeps text", input: `<b>smtp.163.com</b>`, expected: "smtp.163.com"},
		{name: "strips event handlers", input: `<img src="x" onerror="alert('xss')">`, expected: ""},
		{name: "keeps ampersand", input: "a&b@example.com", expected: "a&b@example.com"},
		{name: "trims whitespace", input: "  me@163.com \n", expected: "me@163.com"},
		{name: "plain text untouched", input: "normal text", expected: "normal text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	a, b := " <i>x</i> ", "y"
	sanitizer.Fields(&a, &b, nil)
	assert.Equal(t, "x", a)
	assert.Equal(t, "y", b)
}
