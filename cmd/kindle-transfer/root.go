package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiye465/Kindle-Transfer-App/middlewares"
	"github.com/weiye465/Kindle-Transfer-App/pkg/config"
	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
	"github.com/weiye465/Kindle-Transfer-App/pkg/pipeline"
)

// cli holds state shared by subcommands.
type cli struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "kindle-transfer",
		Short:         "Send documents to a Kindle by email",
		Long:          "Upload documents, optionally convert PDF to EPUB with Calibre, and mail them to a Kindle address.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "",
		"YAML config file (default "+config.DefaultFile+" when present)")

	root.AddCommand(
		newServeCmd(c),
		newSendCmd(c),
		newHistoryCmd(c),
		newSMTPDefaultsCmd(),
		newSweepCmd(c),
	)
	return root
}

// logger builds the process logger writing to w. Sentry forwarding
// follows the configuration.
func (c *cli) logger(w io.Writer) *slog.Logger {
	cfg := c.cfg.Log
	cfg.Output = w
	return logger.New(cfg, middlewares.RequestIDExtractor(), pipeline.RunIDExtractor())
}
