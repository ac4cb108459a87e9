package views

import (
	"context"
	_ "embed"
	"io"

	"github.com/a-h/templ"
)

//go:embed assets/style.css
var stylesheet string

// Layout wraps body in the shared HTML document.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+`</title><style>`+stylesheet+`</style></head><body>`+
			`<header><a href="/">Kindle Transfer</a><nav><a href="/docs">API</a></nav></header><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
