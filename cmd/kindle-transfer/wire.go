package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weiye465/Kindle-Transfer-App/pkg/config"
	"github.com/weiye465/Kindle-Transfer-App/pkg/converter"
	"github.com/weiye465/Kindle-Transfer-App/pkg/job"
	"github.com/weiye465/Kindle-Transfer-App/pkg/library"
	"github.com/weiye465/Kindle-Transfer-App/pkg/mailer"
	"github.com/weiye465/Kindle-Transfer-App/pkg/mailer/resend"
	"github.com/weiye465/Kindle-Transfer-App/pkg/mailer/smtp"
	"github.com/weiye465/Kindle-Transfer-App/pkg/metrics"
	"github.com/weiye465/Kindle-Transfer-App/pkg/pipeline"
	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
	"github.com/weiye465/Kindle-Transfer-App/pkg/storage"
)

// services is the wired domain layer.
type services struct {
	lib      *library.Library
	store    *settings.FileStore
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics
}

func buildServices(cfg *config.Config, log *slog.Logger) (*services, error) {
	lib, err := library.New(cfg.Storage.UploadDir, library.WithOutputDir(cfg.Storage.OutputDir))
	if err != nil {
		return nil, err
	}
	store := settings.NewFileStore(cfg.Storage.SettingsFile)

	convOpts := []converter.Option{converter.WithLogger(log)}
	if cfg.Storage.OutputDir != "" {
		convOpts = append(convOpts, converter.WithOutputDir(cfg.Storage.OutputDir))
	}
	conv := converter.New(&converter.Calibre{Path: cfg.Convert.CalibrePath}, convOpts...)

	disp := mailer.NewDispatcher(senderFactory(cfg.Mail), mailer.WithLogger(log))

	m := metrics.New(prometheus.NewRegistry())
	opts := []pipeline.Option{pipeline.WithLogger(log), pipeline.WithRecorder(m)}

	if cfg.S3.Enabled() {
		archive, err := storage.New(cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 archive: %w", err)
		}
		opts = append(opts, pipeline.WithArchiver(archive))
	}

	return &services{
		lib:      lib,
		store:    store,
		pipeline: pipeline.New(lib, conv, disp, store, opts...),
		metrics:  m,
	}, nil
}

func senderFactory(cfg config.MailConfig) mailer.SenderFactory {
	if strings.EqualFold(cfg.Transport, config.TransportResend) {
		return resend.Factory(resend.Config{APIKey: cfg.ResendAPIKey, SenderName: cfg.SenderName})
	}
	return smtp.Factory(smtp.Config{Auth: cfg.SMTPAuth})
}

// retentionTask deletes uploads older than maxAge.
type retentionTask struct {
	lib      *library.Library
	maxAge   time.Duration
	schedule string
	logger   *slog.Logger
}

func (t *retentionTask) Name() string     { return "sweep_uploads" }
func (t *retentionTask) Schedule() string { return t.schedule }

func (t *retentionTask) Handle(ctx context.Context) error {
	n, err := t.lib.Sweep(ctx, t.maxAge)
	if err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "uploads swept",
		slog.Int("removed", n),
		slog.Duration("max_age", t.maxAge),
	)
	return nil
}

func newJobs(cfg config.RetentionConfig, lib *library.Library, log *slog.Logger) (*job.Manager, error) {
	return job.NewManager(
		job.WithLogger(log),
		job.WithScheduledTask(&retentionTask{
			lib:      lib,
			maxAge:   cfg.MaxAge,
			schedule: cfg.Schedule,
			logger:   log,
		}),
	)
}
