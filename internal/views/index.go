package views

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/weiye465/Kindle-Transfer-App/pkg/library"
	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
)

//go:embed assets/app.js
var script string

// IndexData is what the index page shows.
type IndexData struct {
	// Settings must already be masked.
	Settings           settings.Settings
	History            []library.Entry
	Extensions         []string
	MaxUploadMB        int
	ConvertPDF         bool
	ConverterAvailable bool
}

// Index renders the upload page with the configuration form and history.
func Index(d IndexData) templ.Component {
	return Layout("Kindle Transfer", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		renderUpload(hw, d)
		renderConfig(hw, d.Settings)
		renderHistory(hw, d.History)
		hw.raw(`<script>` + script + `</script>`)
		return hw.err
	}))
}

func renderUpload(hw *htmlWriter, d IndexData) {
	accept := make([]string, len(d.Extensions))
	for i, ext := range d.Extensions {
		accept[i] = "." + ext
	}

	hw.raw(`<section><h2>Send a document</h2><form id="upload-form">`)
	hw.raw(`<input type="file" name="file" required accept="`)
	hw.text(strings.Join(accept, ","))
	hw.raw(`"><p class="hint">Supported: `)
	hw.text(strings.Join(d.Extensions, ", "))
	hw.raw(fmt.Sprintf(`. Up to %d MB per upload, 50 MB per email.</p>`, d.MaxUploadMB))

	switch {
	case d.ConvertPDF && d.ConverterAvailable:
		hw.raw(`<p class="hint">PDF files are converted to EPUB before sending.</p>`)
	case d.ConvertPDF:
		hw.raw(`<p class="hint">PDF conversion is enabled but Calibre is not installed; PDFs are sent as-is.</p>`)
	}

	hw.raw(`<button type="submit">Send to Kindle</button><div id="upload-status" class="status"></div></form></section>`)
}

func renderConfig(hw *htmlWriter, s settings.Settings) {
	hw.raw(`<section><h2>Configuration</h2><form id="config-form">`)
	field(hw, "kindle_email", "Kindle email", "email", s.KindleEmail)
	field(hw, "smtp_email", "Sender email", "email", s.SMTPEmail)
	field(hw, "smtp_password", "Sender password or app token", "password", s.SMTPPassword)
	field(hw, "smtp_server", "SMTP server (optional)", "text", s.SMTPServer)
	port := ""
	if s.SMTPPort != 0 {
		port = strconv.Itoa(int(s.SMTPPort))
	}
	field(hw, "smtp_port", "SMTP port (optional)", "number", port)
	hw.raw(`<p class="hint">Add the sender address to the approved list in your Amazon account.</p>`)
	hw.raw(`<button type="submit">Save</button><div id="config-status" class="status"></div></form></section>`)
}

func field(hw *htmlWriter, name, label, typ, value string) {
	hw.raw(`<label for="` + name + `">`)
	hw.text(label)
	hw.raw(`</label><input id="` + name + `" name="` + name + `" type="` + typ + `" value="`)
	hw.text(value)
	hw.raw(`">`)
}

func renderHistory(hw *htmlWriter, entries []library.Entry) {
	hw.raw(`<section><h2>Recent files</h2>`)
	if len(entries) == 0 {
		hw.raw(`<p class="hint">Nothing uploaded yet.</p></section>`)
		return
	}
	hw.raw(`<table id="history"><thead><tr><th>Name</th><th>Size (MB)</th><th>Time</th></tr></thead><tbody>`)
	for _, e := range entries {
		hw.raw(`<tr><td>`)
		hw.text(e.Name)
		hw.raw(`</td><td>` + strconv.FormatFloat(e.Size, 'f', 2, 64) + `</td><td>`)
		hw.text(e.Time)
		hw.raw(`</td></tr>`)
	}
	hw.raw(`</tbody></table></section>`)
}

// htmlWriter writes markup and escaped text, keeping the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}
