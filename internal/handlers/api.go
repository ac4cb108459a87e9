package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/weiye465/Kindle-Transfer-App/internal"
	"github.com/weiye465/Kindle-Transfer-App/pkg/library"
	"github.com/weiye465/Kindle-Transfer-App/pkg/pipeline"
	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
)

// APIVersion is reported by /api/docs.
const APIVersion = "1.0.0"

const fileField = "file"

// Config holds the server-wide switches handlers need.
type Config struct {
	// ConvertPDF enables PDF to EPUB conversion for the web flow.
	ConvertPDF bool

	// MaxUploadMB is the request body cap shown to users.
	MaxUploadMB int
}

// API serves the JSON endpoints under /api.
type API struct {
	pipeline *pipeline.Pipeline
	store    settings.Store
	lib      *library.Library
	cfg      Config
}

// NewAPI creates the API handler.
func NewAPI(p *pipeline.Pipeline, store settings.Store, cfg Config) *API {
	return &API{pipeline: p, store: store, lib: p.Library(), cfg: cfg}
}

// Routes registers the API endpoints.
func (h *API) Routes(r internal.Router) {
	r.Route("/api", func(r internal.Router) {
		r.GET("/config", h.getConfig)
		r.POST("/config", h.saveConfig)
		r.GET("/smtp-defaults", h.smtpDefaults)
		r.POST("/upload", h.upload)
		r.POST("/convert", h.convert)
		r.POST("/send", h.send)
		r.POST("/process", h.process)
		r.POST("/send-to-kindle", h.sendToKindle)
		r.GET("/history", h.history)
		r.GET("/docs", h.docs)
	})
}

type configResponse struct {
	Success      bool          `json:"success"`
	KindleEmail  string        `json:"kindle_email"`
	SMTPEmail    string        `json:"smtp_email"`
	SMTPPassword string        `json:"smtp_password"`
	SMTPServer   string        `json:"smtp_server"`
	SMTPPort     settings.Port `json:"smtp_port"`
}

func (h *API) getConfig(c internal.Context) error {
	s, err := h.store.Load(c)
	if err != nil {
		return err
	}
	s = s.Masked()
	return c.JSON(http.StatusOK, configResponse{
		Success:      true,
		KindleEmail:  s.KindleEmail,
		SMTPEmail:    s.SMTPEmail,
		SMTPPassword: s.SMTPPassword,
		SMTPServer:   s.SMTPServer,
		SMTPPort:     s.SMTPPort,
	})
}

func (h *API) saveConfig(c internal.Context) error {
	var s settings.Settings
	if err := c.DecodeJSON(&s); err != nil {
		if errors.Is(err, settings.ErrInvalidPort) {
			return err
		}
		return internal.ErrBadRequest(msgInvalidBody, internal.WithError(err))
	}
	if err := h.store.Save(c, s); err != nil {
		return err
	}
	c.LogInfo("configuration saved", slog.Bool("has_password", s.SMTPPassword != ""))
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "configuration saved",
	})
}

func (h *API) smtpDefaults(c internal.Context) error {
	host, port := settings.SMTPDefaults(c.Query("email"))
	return c.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"smtp_server": host,
		"smtp_port":   port,
	})
}

type fileInfo struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Size     float64 `json:"size"`
	SavedAs  string  `json:"saved_as"`
	Checksum string  `json:"checksum"`
}

func (h *API) upload(c internal.Context) error {
	up, closeFn, err := uploadFrom(c)
	if err != nil {
		return err
	}
	defer closeFn()

	art, err := h.pipeline.Intake(c, up)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "file uploaded",
		"file": fileInfo{
			Name:     art.OriginalName,
			Path:     art.Path,
			Size:     art.SizeMB(),
			SavedAs:  art.StoredName,
			Checksum: art.Checksum,
		},
	})
}

type pathRequest struct {
	FilePath string `json:"filepath"`
}

func (h *API) decodePath(c internal.Context) (string, error) {
	var req pathRequest
	if err := c.DecodeJSON(&req); err != nil && !errors.Is(err, internal.ErrEmptyBody) {
		return "", internal.ErrBadRequest(msgInvalidBody, internal.WithError(err))
	}
	if strings.TrimSpace(req.FilePath) == "" {
		return "", pipeline.ErrSourceNotFound
	}
	return req.FilePath, nil
}

func (h *API) convert(c internal.Context) error {
	path, err := h.decodePath(c)
	if err != nil {
		return err
	}
	outcome, err := h.pipeline.Convert(c, path, h.cfg.ConvertPDF)
	if err != nil {
		return err
	}

	msg := "no conversion needed"
	if outcome.WasConverted {
		msg = "converted to " + outcome.Format.String()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"message":        msg,
		"converted_path": outcome.DeliverablePath,
		"format":         outcome.Format,
		"converted":      outcome.WasConverted,
	})
}

func (h *API) send(c internal.Context) error {
	path, err := h.decodePath(c)
	if err != nil {
		return err
	}
	sentTo, err := h.pipeline.Send(c, path, "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "sent to " + sentTo,
		"sent_to": sentTo,
	})
}

func (h *API) process(c internal.Context) error {
	up, closeFn, err := uploadFrom(c)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := h.pipeline.Process(c, up, pipeline.Options{Convert: h.cfg.ConvertPDF})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%s sent to %s", res.Artifact.OriginalName, res.SentTo),
		"run_id":  res.RunID,
		"details": map[string]any{
			"original_file": res.Artifact.OriginalName,
			"converted":     res.Converted(),
			"sent_to":       res.SentTo,
			"format":        res.Format(),
		},
	})
}

// sendToKindle is the single-call API for scripts: a converter that runs
// and fails falls back to sending the original file.
func (h *API) sendToKindle(c internal.Context) error {
	convertPDF := strings.EqualFold(c.FormValue("convert_pdf"), "true")
	recipient := c.FormValue("kindle_email")

	up, closeFn, err := uploadFrom(c)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := h.pipeline.Process(c, up, pipeline.Options{
		Convert:                   convertPDF,
		Recipient:                 recipient,
		TolerateConversionFailure: true,
	})
	if err != nil {
		return err
	}

	size := res.Artifact.SizeMB()
	if info, err := os.Stat(res.Outcome.DeliverablePath); err == nil {
		size = library.MiB(info.Size())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "file sent to " + res.SentTo,
		"run_id":  res.RunID,
		"details": map[string]any{
			"original_filename": res.Artifact.OriginalName,
			"file_size_mb":      size,
			"converted_to_epub": res.Converted(),
			"sent_to":           res.SentTo,
			"format":            res.Format(),
		},
	})
}

func (h *API) history(c internal.Context) error {
	limit := internal.QueryDefault(c, "limit", library.HistoryLimit)
	if limit <= 0 || limit > library.HistoryLimit {
		limit = library.HistoryLimit
	}
	entries, err := h.lib.History(c, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"history": entries,
	})
}

type endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var endpoints = []endpoint{
	{http.MethodGet, "/api/config", "stored configuration, password masked"},
	{http.MethodPost, "/api/config", "save configuration"},
	{http.MethodGet, "/api/smtp-defaults", "SMTP server and port for a sender address"},
	{http.MethodPost, "/api/upload", "store a file (multipart field: file)"},
	{http.MethodPost, "/api/convert", "convert a stored file (JSON: filepath)"},
	{http.MethodPost, "/api/send", "mail a stored file (JSON: filepath)"},
	{http.MethodPost, "/api/process", "upload, convert and send in one request"},
	{http.MethodPost, "/api/send-to-kindle", "upload and send (multipart: file, convert_pdf, kindle_email)"},
	{http.MethodGet, "/api/history", "recently uploaded files (query: limit, at most 20)"},
	{http.MethodGet, "/api/docs", "this description"},
}

func (h *API) docs(c internal.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success":            true,
		"name":               "Kindle Transfer API",
		"version":            APIVersion,
		"supported_formats":  pipeline.AllowedExtensions(),
		"max_upload_mb":      h.cfg.MaxUploadMB,
		"converter_enabled":  h.cfg.ConvertPDF,
		"converter_detected": h.pipeline.ConverterAvailable(),
		"endpoints":          endpoints,
	})
}

// uploadFrom reads the multipart file field. A request without one yields
// pipeline.ErrNoFile; a file part with an empty filename yields
// pipeline.ErrEmptyFilename.
func uploadFrom(c internal.Context) (*pipeline.Upload, func(), error) {
	f, hdr, err := c.FormFile(fileField)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, nil, err
		}
		if form := c.Request().MultipartForm; form != nil {
			if _, ok := form.Value[fileField]; ok {
				return nil, nil, pipeline.ErrEmptyFilename
			}
		}
		return nil, nil, errors.Join(pipeline.ErrNoFile, err)
	}
	return &pipeline.Upload{Filename: hdr.Filename, Content: f}, closer(c, f), nil
}

func closer(c internal.Context, f multipart.File) func() {
	return func() {
		if err := f.Close(); err != nil {
			c.LogDebug("close upload", slog.String("error", err.Error()))
		}
	}
}
