package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiye465/Kindle-Transfer-App/pkg/library"
)

func newSweepCmd(c *cli) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete uploads older than the retention age once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Retention
			if maxAge > 0 {
				cfg.MaxAge = maxAge
			}
			if cfg.MaxAge <= 0 {
				return fmt.Errorf("max age must be positive, got %s", cfg.MaxAge)
			}

			lib, err := library.New(c.cfg.Storage.UploadDir)
			if err != nil {
				return err
			}
			jobs, err := newJobs(cfg, lib, c.logger(os.Stderr))
			if err != nil {
				return err
			}
			return jobs.Run(cmd.Context(), (&retentionTask{}).Name())
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "remove files older than this (default retention.max_age)")
	return cmd
}
