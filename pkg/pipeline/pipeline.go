package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/weiye465/Kindle-Transfer-App/pkg/converter"
	"github.com/weiye465/Kindle-Transfer-App/pkg/library"
	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
	"github.com/weiye465/Kindle-Transfer-App/pkg/mailer"
	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
)

// Converter decides and produces the deliverable for a stored file.
type Converter interface {
	Convert(ctx context.Context, sourcePath string, enable bool) (*converter.Outcome, error)
	Available() bool
}

// Deliverer mails a file to a Kindle address.
type Deliverer interface {
	Deliver(ctx context.Context, creds mailer.Credentials, path string, opts ...mailer.DeliverOption) mailer.Result
}

// Archiver keeps a copy of a delivered file.
type Archiver interface {
	Archive(ctx context.Context, path string) error
}

// Recorder receives pipeline measurements. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	RunFinished(result string)
	Delivery(result, reason string)
	Conversion(result string)
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Options tune a single run.
type Options struct {
	// Convert enables PDF to EPUB conversion.
	Convert bool

	// Recipient overrides the configured Kindle address when set.
	Recipient string

	// TolerateConversionFailure sends the original file when the converter
	// runs and fails, instead of failing the run.
	TolerateConversionFailure bool
}

// Result describes a finished run.
type Result struct {
	RunID    string
	Stage    Stage
	Artifact *library.Artifact
	Outcome  *converter.Outcome
	SentTo   string
	Delivery mailer.Result
	Err      error
}

// Success reports whether the file was delivered.
func (r *Result) Success() bool {
	return r != nil && r.Stage == StageDelivered
}

// Converted reports whether the delivered file was produced by conversion.
func (r *Result) Converted() bool {
	return r != nil && r.Outcome != nil && r.Outcome.WasConverted
}

// Format returns the format label of the deliverable.
func (r *Result) Format() converter.Format {
	if r == nil || r.Outcome == nil {
		return ""
	}
	return r.Outcome.Format
}

// Pipeline runs uploads through storage, conversion and delivery.
type Pipeline struct {
	library    *library.Library
	converter  Converter
	dispatcher Deliverer
	settings   settings.Store
	archiver   Archiver
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithArchiver archives every delivered file. Archive errors are logged only.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) {
		p.archiver = a
	}
}

// New creates a Pipeline.
func New(lib *library.Library, conv Converter, disp Deliverer, store settings.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		library:    lib,
		converter:  conv,
		dispatcher: disp,
		settings:   store,
		recorder:   nopRecorder{},
		logger:     logger.NewNope(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Library returns the upload library.
func (p *Pipeline) Library() *library.Library {
	return p.library
}

// ConverterAvailable reports whether the external converter is installed.
func (p *Pipeline) ConverterAvailable() bool {
	return p.converter != nil && p.converter.Available()
}

// Intake validates and stores an upload. Nothing is written when
// validation fails.
func (p *Pipeline) Intake(ctx context.Context, up *Upload) (*library.Artifact, error) {
	if up == nil || up.Content == nil {
		return nil, ErrNoFile
	}
	if strings.TrimSpace(up.Filename) == "" {
		return nil, ErrEmptyFilename
	}
	if !AllowedFile(up.Filename) {
		return nil, ErrDisallowedExtension
	}

	start := p.now()
	art, err := p.library.Save(ctx, up.Filename, up.Content)
	if err != nil {
		return nil, err
	}
	p.recorder.ObserveStage(StageStored.String(), p.now().Sub(start))

	p.logger.InfoContext(ctx, "file stored",
		slog.String("stage", StageStored.String()),
		slog.String("file", art.OriginalName),
		slog.String("saved_as", art.StoredName),
		slog.Int64("bytes", art.Size),
		slog.String("checksum", art.Checksum),
	)
	return art, nil
}

// Convert applies the conversion policy to a stored file.
func (p *Pipeline) Convert(ctx context.Context, path string, enable bool) (*converter.Outcome, error) {
	src, err := p.resolve(path)
	if err != nil {
		return nil, err
	}
	return p.convert(ctx, src, enable)
}

// Send delivers a stored file using the configured credentials.
// recipient overrides the configured Kindle address when set.
func (p *Pipeline) Send(ctx context.Context, path, recipient string) (string, error) {
	src, err := p.resolve(path)
	if err != nil {
		return "", err
	}
	creds, err := p.credentials(ctx, recipient)
	if err != nil {
		return "", err
	}
	res := p.deliver(ctx, creds, src)
	if !res.Success {
		return "", errors.Join(ErrDeliveryFailed, res.Err)
	}
	return creds.KindleAddress, nil
}

// Process runs the whole pipeline for one upload. The returned Result is
// never nil; its Err equals the returned error.
func (p *Pipeline) Process(ctx context.Context, up *Upload, opts Options) (*Result, error) {
	res := &Result{RunID: newRunID(), Stage: StageReceived}
	ctx = WithRunID(ctx, res.RunID)

	if err := p.process(ctx, up, opts, res); err != nil {
		res.Stage = StageFailed
		res.Err = err
		p.recorder.RunFinished(StageFailed.String())
		p.logger.WarnContext(ctx, "pipeline failed",
			slog.String("stage", StageFailed.String()),
			slog.String("error", err.Error()),
		)
		return res, err
	}

	res.Stage = StageDelivered
	p.recorder.RunFinished(StageDelivered.String())
	p.logger.InfoContext(ctx, "pipeline finished",
		slog.String("stage", StageDelivered.String()),
		slog.String("file", res.Artifact.OriginalName),
		slog.String("sent_to", res.SentTo),
		slog.String("format", res.Format().String()),
		slog.Bool("converted", res.Converted()),
	)
	return res, nil
}

func (p *Pipeline) process(ctx context.Context, up *Upload, opts Options, res *Result) error {
	art, err := p.Intake(ctx, up)
	if err != nil {
		return err
	}
	res.Artifact = art
	res.Stage = StageStored

	outcome, err := p.convert(ctx, art.Path, opts.Convert)
	if err != nil {
		if !opts.TolerateConversionFailure || !errors.Is(err, ErrConversionFailed) {
			return err
		}
		p.logger.WarnContext(ctx, "conversion failed, sending original",
			slog.String("file", art.OriginalName),
			slog.String("error", err.Error()),
		)
		format, _ := converter.FormatOf(art.Path)
		outcome = &converter.Outcome{SourcePath: art.Path, DeliverablePath: art.Path, Format: format}
	}
	res.Outcome = outcome
	if outcome.WasConverted {
		res.Stage = StageConverted
	} else {
		res.Stage = StageConversionSkipped
	}

	creds, err := p.credentials(ctx, opts.Recipient)
	if err != nil {
		return err
	}

	res.Delivery = p.deliver(ctx, creds, outcome.DeliverablePath)
	if !res.Delivery.Success {
		return errors.Join(ErrDeliveryFailed, res.Delivery.Err)
	}
	res.SentTo = creds.KindleAddress
	return nil
}

func (p *Pipeline) resolve(path string) (string, error) {
	src, err := p.library.Resolve(path)
	if err != nil {
		return "", errors.Join(ErrSourceNotFound, err)
	}
	return src, nil
}

func (p *Pipeline) convert(ctx context.Context, src string, enable bool) (*converter.Outcome, error) {
	start := p.now()
	outcome, err := p.converter.Convert(ctx, src, enable)
	p.recorder.ObserveStage(StageConverted.String(), p.now().Sub(start))

	switch {
	case errors.Is(err, converter.ErrNotFound):
		return nil, errors.Join(ErrSourceNotFound, err)
	case errors.Is(err, converter.ErrConversionFailed):
		p.recorder.Conversion("failed")
		return nil, errors.Join(ErrConversionFailed, err)
	case errors.Is(err, converter.ErrUnsupportedFormat):
		return nil, errors.Join(ErrDisallowedExtension, err)
	case err != nil:
		return nil, err
	}

	switch {
	case outcome.WasConverted:
		p.recorder.Conversion("converted")
	case enable && outcome.Format == converter.FormatPDF:
		p.recorder.Conversion("unavailable")
	default:
		p.recorder.Conversion("skipped")
	}

	stage := StageConversionSkipped
	if outcome.WasConverted {
		stage = StageConverted
	}
	p.logger.InfoContext(ctx, "conversion decided",
		slog.String("stage", stage.String()),
		slog.String("file", outcome.SourcePath),
		slog.String("deliverable", outcome.DeliverablePath),
		slog.String("format", outcome.Format.String()),
	)
	return outcome, nil
}

func (p *Pipeline) credentials(ctx context.Context, recipient string) (mailer.Credentials, error) {
	s, err := p.settings.Load(ctx)
	if err != nil {
		return mailer.Credentials{}, err
	}
	if r := strings.TrimSpace(recipient); r != "" {
		s.KindleEmail = r
	}
	return s.Credentials()
}

func (p *Pipeline) deliver(ctx context.Context, creds mailer.Credentials, path string) mailer.Result {
	start := p.now()
	res := p.dispatcher.Deliver(ctx, creds, path)
	p.recorder.ObserveStage(StageDelivered.String(), p.now().Sub(start))

	if !res.Success {
		p.recorder.Delivery("failure", string(res.Reason))
		return res
	}
	p.recorder.Delivery("success", "")

	if p.archiver != nil {
		if err := p.archiver.Archive(ctx, path); err != nil {
			p.logger.WarnContext(ctx, "archive failed",
				slog.String("file", path),
				slog.String("error", err.Error()),
			)
		}
	}
	return res
}

type nopRecorder struct{}

func (nopRecorder) ObserveStage(string, time.Duration) {}
func (nopRecorder) RunFinished(string)                 {}
func (nopRecorder) Delivery(string, string)            {}
func (nopRecorder) Conversion(string)                  {}
