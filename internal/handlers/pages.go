package handlers

import (
	"net/http"

	"github.com/weiye465/Kindle-Transfer-App/internal"
	"github.com/weiye465/Kindle-Transfer-App/internal/views"
	"github.com/weiye465/Kindle-Transfer-App/pkg/library"
	"github.com/weiye465/Kindle-Transfer-App/pkg/pipeline"
	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
)

// Pages serves the HTML pages.
type Pages struct {
	pipeline *pipeline.Pipeline
	store    settings.Store
	cfg      Config
	docsPage internal.Component
}

// NewPages creates the page handler. The API reference is rendered here,
// once, so a broken embedded document fails startup.
func NewPages(p *pipeline.Pipeline, store settings.Store, cfg Config) (*Pages, error) {
	docs, err := views.Docs()
	if err != nil {
		return nil, err
	}
	return &Pages{pipeline: p, store: store, cfg: cfg, docsPage: docs}, nil
}

const robots = "User-agent: *\nDisallow: /\n"

// Routes registers the page endpoints.
func (h *Pages) Routes(r internal.Router) {
	r.GET("/", h.index)
	r.GET("/docs", h.docs)
	r.GET("/robots.txt", h.robots)
	r.GET("/favicon.ico", h.favicon)
}

func (h *Pages) index(c internal.Context) error {
	s, err := h.store.Load(c)
	if err != nil {
		return err
	}
	history, err := h.pipeline.Library().History(c, library.HistoryLimit)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, views.Index(views.IndexData{
		Settings:           s.Masked(),
		History:            history,
		Extensions:         pipeline.AllowedExtensions(),
		MaxUploadMB:        h.cfg.MaxUploadMB,
		ConvertPDF:         h.cfg.ConvertPDF,
		ConverterAvailable: h.pipeline.ConverterAvailable(),
	}))
}

func (h *Pages) docs(c internal.Context) error {
	return c.Render(http.StatusOK, h.docsPage)
}

// robots keeps a personal instance out of search indexes.
func (h *Pages) robots(c internal.Context) error {
	return c.String(http.StatusOK, robots)
}

// favicon answers browsers' automatic request without a 404 log line.
func (h *Pages) favicon(c internal.Context) error {
	return c.NoContent(http.StatusNoContent)
}
