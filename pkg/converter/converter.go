package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
)

// Outcome describes what will be delivered for a source file.
// DeliverablePath equals SourcePath when no conversion happened.
type Outcome struct {
	SourcePath      string `json:"source_path"`
	DeliverablePath string `json:"deliverable_path"`
	Format          Format `json:"format"`
	WasConverted    bool   `json:"was_converted"`
}

// Converter applies the conversion policy: only PDFs are converted, only when
// enabled, and a missing tool degrades to sending the PDF as-is.
type Converter struct {
	tool      Tool
	logger    *slog.Logger
	outputDir string
}

// Option configures a Converter.
type Option func(*Converter)

// WithOutputDir places converted files in dir instead of next to the source.
func WithOutputDir(dir string) Option {
	return func(c *Converter) {
		c.outputDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Converter backed by tool.
func New(tool Tool, opts ...Option) *Converter {
	c := &Converter{
		tool:   tool,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the external tool is installed.
func (c *Converter) Available() bool {
	if c.tool == nil {
		return false
	}
	_, ok := c.tool.Locate()
	return ok
}

// Convert returns the deliverable for sourcePath.
//
// Non-PDF sources and PDFs with conversion disabled pass through untouched.
// A PDF with conversion enabled is converted to EPUB when the tool is
// installed; when it is not, the PDF passes through. A tool that runs and
// fails yields ErrConversionFailed.
func (c *Converter) Convert(ctx context.Context, sourcePath string, enable bool) (*Outcome, error) {
	if !isFile(sourcePath) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
	}

	format, err := FormatOf(sourcePath)
	if err != nil {
		return nil, err
	}

	passthrough := &Outcome{
		SourcePath:      sourcePath,
		DeliverablePath: sourcePath,
		Format:          format,
	}

	if format != FormatPDF || !enable {
		return passthrough, nil
	}

	var (
		executable string
		found      bool
	)
	if c.tool != nil {
		executable, found = c.tool.Locate()
	}
	if !found {
		c.logger.WarnContext(ctx, "converter not installed, sending original PDF",
			slog.String("file", filepath.Base(sourcePath)),
		)
		return passthrough, nil
	}

	dst, err := c.destination(sourcePath)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "converting document",
		slog.String("from", filepath.Base(sourcePath)),
		slog.String("to", filepath.Base(dst)),
	)

	res, err := c.tool.Run(ctx, executable, calibreArgs(sourcePath, dst)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: exit status %d: %s", ErrConversionFailed, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	if !isFile(dst) {
		return nil, fmt.Errorf("%w: no output produced at %s", ErrConversionFailed, dst)
	}

	return &Outcome{
		SourcePath:      sourcePath,
		DeliverablePath: dst,
		Format:          FormatEPUB,
		WasConverted:    true,
	}, nil
}

func (c *Converter) destination(src string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if c.outputDir == "" {
		return filepath.Join(filepath.Dir(src), stem+".epub"), nil
	}
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create output dir: %v", ErrConversionFailed, err)
	}
	return filepath.Join(c.outputDir, stem+".epub"), nil
}
