package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/weiye465/Kindle-Transfer-App/pkg/filename"
	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
)

const (
	// MaxAttachmentSize is the largest file accepted for delivery (50 MiB).
	MaxAttachmentSize int64 = 50 * 1024 * 1024

	// DefaultSubject makes the Kindle mail gateway convert the document on
	// its side. It must be sent verbatim.
	DefaultSubject = "convert"
)

// Reason classifies a failed delivery. The zero value means success.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonNotFound   Reason = "not_found"
	ReasonOversized  Reason = "oversized"
	ReasonAuth       Reason = "auth"
	ReasonTransport  Reason = "transport"
	ReasonUnexpected Reason = "unexpected"
)

// Result is the terminal outcome of one delivery attempt.
// Callers present any failure the same way; Reason is for logs and metrics.
type Result struct {
	Err     error  `json:"-"`
	Reason  Reason `json:"reason,omitempty"`
	Success bool   `json:"success"`
}

// Dispatcher sends a single file as an attachment to a Kindle address.
type Dispatcher struct {
	factory  SenderFactory
	renderer *Renderer
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRenderer overrides the message body templates.
func WithRenderer(r *Renderer) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.renderer = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a Dispatcher that builds transports with factory.
func NewDispatcher(factory SenderFactory, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		factory:  factory,
		renderer: DefaultRenderer(),
		logger:   logger.NewNope(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type deliverOptions struct {
	subject string
}

// DeliverOption configures one delivery.
type DeliverOption func(*deliverOptions)

// WithSubject overrides the subject. An empty subject keeps the default.
func WithSubject(subject string) DeliverOption {
	return func(o *deliverOptions) {
		if subject != "" {
			o.subject = subject
		}
	}
}

// Deliver sends the file at path to creds.KindleAddress.
//
// Missing and oversized files fail before any network activity. All other
// failures collapse to Success=false with the cause recorded in Reason.
func (d *Dispatcher) Deliver(ctx context.Context, creds Credentials, path string, opts ...DeliverOption) Result {
	email, err := d.compose(creds, path, opts...)
	if err != nil {
		return d.fail(ctx, creds, path, err)
	}

	d.logger.InfoContext(ctx, "sending document",
		slog.String("file", filepath.Base(path)),
		slog.String("to", creds.KindleAddress),
		slog.String("smtp", fmt.Sprintf("%s:%d", creds.SMTPHost, creds.SMTPPort)),
		slog.Bool("implicit_tls", creds.ImplicitTLS()),
		slog.Int64("bytes", email.Size()),
	)

	sender, err := d.factory(creds)
	if err != nil {
		return d.fail(ctx, creds, path, err)
	}

	if err := sender.Send(ctx, email); err != nil {
		return d.fail(ctx, creds, path, err)
	}

	d.logger.InfoContext(ctx, "document sent",
		slog.String("file", filepath.Base(path)),
		slog.String("to", creds.KindleAddress),
	)
	return Result{Success: true}
}

// compose validates the file and builds the message without touching the network.
func (d *Dispatcher) compose(creds Credentials, path string, opts ...DeliverOption) (*Email, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if info.Size() > MaxAttachmentSize {
		return nil, fmt.Errorf("%w: %.1f MiB", ErrAttachmentTooLarge, float64(info.Size())/1024/1024)
	}
	if creds.KindleAddress == "" {
		return nil, ErrNoRecipient
	}
	if creds.SenderAddress == "" {
		return nil, ErrNoSender
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	name := filename.ExtractOriginalName(filepath.Base(path))
	body, err := d.renderer.Render(DeliveryTemplate, map[string]string{"Filename": name})
	if err != nil {
		return nil, err
	}

	o := deliverOptions{subject: body.Subject()}
	if o.subject == "" {
		o.subject = DefaultSubject
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Email{
		From:    creds.SenderAddress,
		To:      []string{creds.KindleAddress},
		Subject: o.subject,
		Text:    body.Text,
		Tags:    Tags{"app": "kindle-transfer"},
		Attachments: []Attachment{{
			Filename:    name,
			ContentType: "application/octet-stream",
			Content:     content,
		}},
	}, nil
}

func (d *Dispatcher) fail(ctx context.Context, creds Credentials, path string, err error) Result {
	reason := Classify(err)
	d.logger.ErrorContext(ctx, "delivery failed",
		slog.String("file", filepath.Base(path)),
		slog.String("to", creds.KindleAddress),
		slog.String("reason", string(reason)),
		slog.String("error", err.Error()),
	)
	return Result{Reason: reason, Err: err}
}

// Classify maps a delivery error to a Reason.
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrFileNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrAttachmentTooLarge):
		return ReasonOversized
	case errors.Is(err, ErrAuthFailed):
		return ReasonAuth
	case errors.Is(err, ErrTransportFailed):
		return ReasonTransport
	default:
		return ReasonUnexpected
	}
}
