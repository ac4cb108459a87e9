package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiye465/Kindle-Transfer-App/internal"
	"github.com/weiye465/Kindle-Transfer-App/internal/handlers"
	"github.com/weiye465/Kindle-Transfer-App/middlewares"
	"github.com/weiye465/Kindle-Transfer-App/pkg/converter"
	"github.com/weiye465/Kindle-Transfer-App/pkg/library"
	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
	"github.com/weiye465/Kindle-Transfer-App/pkg/mailer"
	"github.com/weiye465/Kindle-Transfer-App/pkg/pipeline"
	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
)

// fakeConverter converts PDFs by writing a sibling .epub unless fail is set.
type fakeConverter struct {
	fail bool
}

func (f *fakeConverter) Available() bool { return true }

func (f *fakeConverter) Convert(_ context.Context, src string, enable bool) (*converter.Outcome, error) {
	format, err := converter.FormatOf(src)
	if err != nil {
		return nil, err
	}
	if !enable || format != converter.FormatPDF {
		return &converter.Outcome{SourcePath: src, DeliverablePath: src, Format: format}, nil
	}
	if f.fail {
		return nil, converter.ErrConversionFailed
	}
	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".epub"
	if err := os.WriteFile(dst, []byte("epub bytes, longer than the pdf"), 0o644); err != nil {
		return nil, err
	}
	return &converter.Outcome{SourcePath: src, DeliverablePath: dst, Format: converter.FormatEPUB, WasConverted: true}, nil
}

type delivery struct {
	to   string
	path string
}

type fakeDeliverer struct {
	mu   sync.Mutex
	fail bool
	sent []delivery
}

func (f *fakeDeliverer) Deliver(_ context.Context, creds mailer.Credentials, path string, _ ...mailer.DeliverOption) mailer.Result {
	if f.fail {
		return mailer.Result{Reason: mailer.ReasonAuth, Err: errors.New("535 authentication failed")}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, delivery{to: creds.KindleAddress, path: path})
	return mailer.Result{Success: true}
}

type fixture struct {
	app   *internal.App
	lib   *library.Library
	store *settings.FileStore
	conv  *fakeConverter
	disp  *fakeDeliverer
	logs  *bytes.Buffer
}

func newFixture(t *testing.T, cfg handlers.Config) *fixture {
	t.Helper()

	dir := t.TempDir()
	lib, err := library.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	f := &fixture{
		lib:   lib,
		store: settings.NewFileStore(filepath.Join(dir, "config.json"), settings.WithEnv(nil)),
		conv:  &fakeConverter{},
		disp:  &fakeDeliverer{},
		logs:  &bytes.Buffer{},
	}
	p := pipeline.New(lib, f.conv, f.disp, f.store)
	pages, err := handlers.NewPages(p, f.store, cfg)
	require.NoError(t, err)

	f.app = internal.New(
		internal.WithCustomLogger(logger.New(logger.Config{Output: f.logs}, middlewares.RequestIDExtractor())),
		internal.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		internal.WithHandlers(
			handlers.NewAPI(p, f.store, cfg),
			pages,
		),
	)
	return f
}

func (f *fixture) configure(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), settings.Settings{
		KindleEmail:  "reader@kindle.com",
		SMTPEmail:    "me@163.com",
		SMTPPassword: "app-token",
	}))
}

func (f *fixture) do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	f.app.ServeHTTP(w, req)

	var body map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &body)
	}
	return w, body
}

type part struct {
	name, filename, content string
}

func multipartRequest(t *testing.T, path string, parts ...part) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" && p.name != "file" {
			require.NoError(t, mw.WriteField(p.name, p.content))
			continue
		}
		fw, err := mw.CreateFormFile(p.name, p.filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestConfigEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t, handlers.Config{})

	w, body := f.do(jsonRequest(http.MethodGet, "/api/config", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "", body["smtp_password"])

	w, body = f.do(jsonRequest(http.MethodPost, "/api/config",
		`{"kindle_email":"reader@kindle.com","smtp_email":"me@qq.com","smtp_password":"secret","smtp_port":"587"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "configuration saved", body["message"])

	_, body = f.do(jsonRequest(http.MethodGet, "/api/config", ""))
	assert.Equal(t, settings.Mask, body["smtp_password"])
	assert.EqualValues(t, 587, body["smtp_port"])

	// Submitting the mask keeps the stored password.
	f.do(jsonRequest(http.MethodPost, "/api/config",
		`{"kindle_email":"other@kindle.com","smtp_email":"me@qq.com","smtp_password":"********"}`))
	stored, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", stored.SMTPPassword)
	assert.Equal(t, "other@kindle.com", stored.KindleEmail)

	t.Run("invalid port", func(t *testing.T) {
		w, body := f.do(jsonRequest(http.MethodPost, "/api/config", `{"smtp_port":"abc"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid SMTP port", body["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w, body := f.do(jsonRequest(http.MethodPost, "/api/config", `{`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["request_id"])
	})
}

func TestSMTPDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t, handlers.Config{})

	_, body := f.do(jsonRequest(http.MethodGet, "/api/smtp-defaults?email=Someone@Gmail.com", ""))
	assert.Equal(t, "smtp.gmail.com", body["smtp_server"])
	assert.EqualValues(t, 587, body["smtp_port"])

	_, body = f.do(jsonRequest(http.MethodGet, "/api/smtp-defaults", ""))
	assert.Equal(t, "smtp.163.com", body["smtp_server"])
	assert.EqualValues(t, 465, body["smtp_port"])
}

func TestUpload(t *testing.T) {
	t.Parallel()

	f := newFixture(t, handlers.Config{})

	w, body := f.do(multipartRequest(t, "/api/upload", part{"file", "My Book.txt", "hello kindle"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	file, ok := body["file"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "My Book.txt", file["name"])
	assert.Contains(t, file["saved_as"], "My_Book.txt")
	assert.Len(t, file["checksum"], 64)
	assert.FileExists(t, file["path"].(string))

	tests := []struct {
		name    string
		req     *http.Request
		message string
	}{
		{
			name:    "no file field",
			req:     multipartRequest(t, "/api/upload", part{"other", "", "x"}),
			message: "no file provided",
		},
		{
			name:    "not multipart",
			req:     jsonRequest(http.MethodPost, "/api/upload", `{}`),
			message: "no file provided",
		},
		{
			name:    "empty filename",
			req:     multipartRequest(t, "/api/upload", part{"file", "", "x"}),
			message: "no file selected",
		},
		{
			name:    "disallowed extension",
			req:     multipartRequest(t, "/api/upload", part{"file", "virus.exe", "x"}),
			message: "unsupported file format, supported: pdf, epub, mobi, txt, doc, docx",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.do(tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.message, body["error"])
		})
	}

	entries, err := f.lib.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConvertAndSend(t *testing.T) {
	t.Parallel()

	f := newFixture(t, handlers.Config{ConvertPDF: true})

	_, body := f.do(multipartRequest(t, "/api/upload", part{"file", "paper.pdf", "%PDF"}))
	path := body["file"].(map[string]any)["path"].(string)

	w, body := f.do(jsonRequest(http.MethodPost, "/api/convert", `{"filepath":`+quote(path)+`}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["converted"])
	assert.Equal(t, "EPUB", body["format"])
	converted := body["converted_path"].(string)
	assert.True(t, strings.HasSuffix(converted, ".epub"))

	t.Run("send without configuration", func(t *testing.T) {
		w, body := f.do(jsonRequest(http.MethodPost, "/api/send", `{"filepath":`+quote(converted)+`}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "configure the Kindle email first", body["message"])
	})

	t.Run("send", func(t *testing.T) {
		f.configure(t)
		w, body := f.do(jsonRequest(http.MethodPost, "/api/send", `{"filepath":`+quote(converted)+`}`))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "reader@kindle.com", body["sent_to"])
	})

	t.Run("missing path", func(t *testing.T) {
		w, body := f.do(jsonRequest(http.MethodPost, "/api/convert", `{}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "file not found", body["message"])
	})

	t.Run("path outside uploads", func(t *testing.T) {
		w, body := f.do(jsonRequest(http.MethodPost, "/api/send", `{"filepath":"../../etc/passwd"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "file not found", body["message"])
	})
}

func TestProcess(t *testing.T) {
	t.Parallel()

	t.Run("delivers converted file", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, handlers.Config{ConvertPDF: true})
		f.configure(t)

		w, body := f.do(multipartRequest(t, "/api/process", part{"file", "paper.pdf", "%PDF"}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		details := body["details"].(map[string]any)
		assert.Equal(t, "paper.pdf", details["original_file"])
		assert.Equal(t, true, details["converted"])
		assert.Equal(t, "EPUB", details["format"])
		assert.Equal(t, "reader@kindle.com", details["sent_to"])
		assert.NotEmpty(t, body["run_id"])

		require.Len(t, f.disp.sent, 1)
		assert.True(t, strings.HasSuffix(f.disp.sent[0].path, ".epub"))
	})

	t.Run("conversion failure is fatal", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, handlers.Config{ConvertPDF: true})
		f.configure(t)
		f.conv.fail = true

		w, body := f.do(multipartRequest(t, "/api/process", part{"file", "paper.pdf", "%PDF"}))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "conversion failed", body["message"])
		assert.Empty(t, f.disp.sent)
	})

	t.Run("delivery failure hides cause", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, handlers.Config{})
		f.configure(t)
		f.disp.fail = true

		w, body := f.do(multipartRequest(t, "/api/process", part{"file", "notes.txt", "x"}))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "delivery failed, check configuration", body["message"])
		assert.NotContains(t, w.Body.String(), "535")
		assert.Contains(t, f.logs.String(), "535 authentication failed")
	})
}

func TestSendToKindle(t *testing.T) {
	t.Parallel()

	t.Run("override and tolerated conversion failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, handlers.Config{})
		f.configure(t)
		f.conv.fail = true

		w, body := f.do(multipartRequest(t, "/api/send-to-kindle",
			part{"convert_pdf", "", "true"},
			part{"kindle_email", "", "friend@kindle.com"},
			part{"file", "paper.pdf", "%PDF-1.7"},
		))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		details := body["details"].(map[string]any)
		assert.Equal(t, "paper.pdf", details["original_filename"])
		assert.Equal(t, false, details["converted_to_epub"])
		assert.Equal(t, "PDF", details["format"])
		assert.Equal(t, "friend@kindle.com", details["sent_to"])
		assert.EqualValues(t, 0, details["file_size_mb"])
	})

	t.Run("conversion defaults to off", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, handlers.Config{ConvertPDF: true})
		f.configure(t)

		_, body := f.do(multipartRequest(t, "/api/send-to-kindle", part{"file", "paper.pdf", "%PDF"}))
		details := body["details"].(map[string]any)
		assert.Equal(t, false, details["converted_to_epub"])
		assert.Equal(t, "reader@kindle.com", details["sent_to"])
	})

	t.Run("convert_pdf accepts only true", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			value   string
			convert bool
		}{
			{"true", true},
			{"TRUE", true},
			{"True", true},
			{"1", false},
			{"t", false},
			{"T", false},
			{"yes", false},
			{"false", false},
		}
		for _, tt := range tests {
			f := newFixture(t, handlers.Config{})
			f.configure(t)

			w, body := f.do(multipartRequest(t, "/api/send-to-kindle",
				part{"convert_pdf", "", tt.value},
				part{"file", "paper.pdf", "%PDF"},
			))
			require.Equal(t, http.StatusOK, w.Code, tt.value)
			details := body["details"].(map[string]any)
			assert.Equal(t, tt.convert, details["converted_to_epub"], tt.value)
		}
	})
}

func TestHistoryAndDocs(t *testing.T) {
	t.Parallel()

	f := newFixture(t, handlers.Config{MaxUploadMB: 100})

	_, body := f.do(jsonRequest(http.MethodGet, "/api/history", ""))
	assert.Equal(t, true, body["success"])
	assert.Empty(t, body["history"])

	f.do(multipartRequest(t, "/api/upload", part{"file", "a.txt", "a"}))
	_, body = f.do(jsonRequest(http.MethodGet, "/api/history", ""))
	history := body["history"].([]any)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].(map[string]any)["name"], "a.txt")

	f.do(multipartRequest(t, "/api/upload", part{"file", "b.txt", "b"}))
	for query, want := range map[string]int{"?limit=1": 1, "?limit=0": 2, "?limit=500": 2, "?limit=abc": 2} {
		_, body = f.do(jsonRequest(http.MethodGet, "/api/history"+query, ""))
		assert.Len(t, body["history"], want, query)
	}

	_, body = f.do(jsonRequest(http.MethodGet, "/api/docs", ""))
	assert.Equal(t, handlers.APIVersion, body["version"])
	assert.EqualValues(t, 100, body["max_upload_mb"])
	assert.NotEmpty(t, body["endpoints"])
}

func TestPages(t *testing.T) {
	t.Parallel()

	f := newFixture(t, handlers.Config{MaxUploadMB: 100})
	f.configure(t)

	w, _ := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "reader@kindle.com")
	assert.Contains(t, w.Body.String(), settings.Mask)
	assert.NotContains(t, w.Body.String(), "app-token")

	w, _ = f.do(httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/send-to-kindle")

	again, _ := f.do(httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, w.Body.String(), again.Body.String())

	w, _ = f.do(httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "User-agent: *\nDisallow: /\n", w.Body.String())

	w, _ = f.do(httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRouting(t *testing.T) {
	t.Parallel()

	f := newFixture(t, handlers.Config{})

	w, body := f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])

	w, body = f.do(httptest.NewRequest(http.MethodDelete, "/api/history", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "method not allowed", body["message"])
}

func TestErrorHandler_TooLarge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lib, err := library.New(dir)
	require.NoError(t, err)
	store := settings.NewFileStore(filepath.Join(dir, "config.json"), settings.WithEnv(nil))
	p := pipeline.New(lib, &fakeConverter{}, &fakeDeliverer{}, store)

	app := internal.New(
		internal.WithMiddleware(middlewares.BodyLimit(64)),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithHandlers(handlers.NewAPI(p, store, handlers.Config{})),
	)

	req := multipartRequest(t, "/api/upload", part{"file", "big.txt", strings.Repeat("x", 1024)})
	req.ContentLength = -1
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "file is too large")
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
