package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	kindle "github.com/weiye465/Kindle-Transfer-App"
	"github.com/weiye465/Kindle-Transfer-App/internal/handlers"
	"github.com/weiye465/Kindle-Transfer-App/middlewares"
	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web app and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			return c.serve(cmd)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}

func (c *cli) serve(cmd *cobra.Command) error {
	cfg := c.cfg
	log := c.logger(os.Stdout)

	svc, err := buildServices(cfg, log)
	if err != nil {
		return err
	}

	hcfg := handlers.Config{
		ConvertPDF:  cfg.Convert.PDFToEPUB,
		MaxUploadMB: int(cfg.Server.MaxUploadMB),
	}

	health := []kindle.HealthOption{
		kindle.WithReadinessCheck("uploads", svc.lib.Healthcheck()),
		kindle.WithReadinessCheck("settings", svc.store.Healthcheck()),
	}
	runOpts := []kindle.RunOption{
		kindle.WithContext(cmd.Context()),
		kindle.ReadHeaderTimeout(cfg.Server.ReadHeaderTimeout),
		kindle.ReadTimeout(cfg.Server.ReadTimeout),
		kindle.WriteTimeout(cfg.Server.WriteTimeout),
		kindle.ShutdownTimeout(cfg.Server.ShutdownTimeout),
	}

	if cfg.Retention.Enabled {
		jobs, err := newJobs(cfg.Retention, svc.lib, log)
		if err != nil {
			return err
		}
		health = append(health, kindle.WithReadinessCheck("jobs", jobs.Healthcheck()))
		runOpts = append(runOpts,
			kindle.StartupHook(jobs.StartFunc()),
			kindle.ShutdownHook(jobs.Shutdown()),
		)
	}
	runOpts = append(runOpts, kindle.ShutdownHook(logger.Flush))

	pages, err := handlers.NewPages(svc.pipeline, svc.store, hcfg)
	if err != nil {
		return err
	}

	app := kindle.New(
		kindle.WithCustomLogger(log),
		kindle.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.RequestLogger(),
			middlewares.Metrics(svc.metrics),
			middlewares.BodyLimit(cfg.Server.MaxUploadBytes()),
		),
		kindle.WithErrorHandler(handlers.ErrorHandler),
		kindle.WithNotFoundHandler(handlers.NotFound),
		kindle.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		kindle.WithHealthChecks(health...),
		kindle.WithMount("/metrics", svc.metrics.Handler()),
		kindle.WithHandlers(
			handlers.NewAPI(svc.pipeline, svc.store, hcfg),
			pages,
		),
	)

	log.Info("starting kindle transfer",
		slog.String("addr", cfg.Server.Addr),
		slog.String("upload_dir", svc.lib.Dir()),
		slog.Bool("convert_pdf", hcfg.ConvertPDF),
		slog.Bool("converter_available", svc.pipeline.ConverterAvailable()),
		slog.String("mail_transport", cfg.Mail.Transport),
		slog.Bool("s3_archive", cfg.S3.Enabled()),
		slog.Bool("retention", cfg.Retention.Enabled),
	)
	return app.Run(cfg.Server.Addr, runOpts...)
}
