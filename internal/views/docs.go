package views

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed content/api.md
var apiMarkdown []byte

// APIMarkdown returns the embedded API reference source.
func APIMarkdown() []byte {
	return bytes.Clone(apiMarkdown)
}

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(src []byte) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("views: render markdown: %w", err)
	}
	return string(bluemonday.UGCPolicy().SanitizeBytes(buf.Bytes())), nil
}

// Docs renders the API reference page. The markdown is converted once,
// so call it at startup and reuse the component.
func Docs() (templ.Component, error) {
	html, err := RenderMarkdown(apiMarkdown)
	if err != nil {
		return nil, err
	}
	return Layout("Kindle Transfer API", templ.Raw(`<section>`+html+`</section>`)), nil
}
