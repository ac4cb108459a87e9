package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/weiye465/Kindle-Transfer-App/internal/handlers"
	"github.com/weiye465/Kindle-Transfer-App/pkg/pipeline"
)

type sendFlags struct {
	convert     bool
	to          string
	concurrency int
}

func newSendCmd(c *cli) *cobra.Command {
	f := &sendFlags{}

	cmd := &cobra.Command{
		Use:   "send FILE...",
		Short: "Upload, convert and mail files using the stored settings",
		Long: "Runs each file through the same pipeline as the web app. " +
			"Exits non-zero when any file was not delivered.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("convert") {
				f.convert = c.cfg.Convert.PDFToEPUB
			}
			return c.send(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, f)
		},
	}

	cmd.Flags().BoolVar(&f.convert, "convert", false, "convert PDF to EPUB before sending (default convert.pdf_to_epub)")
	cmd.Flags().StringVar(&f.to, "to", "", "Kindle address, overrides the stored one")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "j", 1, "files processed at once, 1 sends them one by one")
	return cmd
}

type sendOutcome struct {
	file string
	res  *pipeline.Result
	err  error
}

func (c *cli) send(ctx context.Context, stdout, stderr io.Writer, files []string, f *sendFlags) error {
	log := c.logger(stderr)
	svc, err := buildServices(c.cfg, log)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetDescription("sending"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	outcomes := make([]sendOutcome, len(files))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.concurrency, 1))
	for i, file := range files {
		g.Go(func() error {
			res, err := sendFile(gctx, svc.pipeline, file, f)
			mu.Lock()
			outcomes[i] = sendOutcome{file: file, res: res, err: err}
			mu.Unlock()
			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			_, msg := handlers.Classify(o.err)
			fmt.Fprintf(stdout, "FAIL  %s: %s\n", o.file, msg)
			continue
		}
		fmt.Fprintf(stdout, "OK    %s -> %s (%s)\n", o.file, o.res.SentTo, o.res.Format())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files not delivered", failed, len(files))
	}
	return nil
}

func sendFile(ctx context.Context, p *pipeline.Pipeline, path string, f *sendFlags) (*pipeline.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrSourceNotFound, err)
	}
	defer file.Close()

	return p.Process(ctx, &pipeline.Upload{
		Filename: filepath.Base(path),
		Content:  file,
	}, pipeline.Options{
		Convert:   f.convert,
		Recipient: f.to,
	})
}
