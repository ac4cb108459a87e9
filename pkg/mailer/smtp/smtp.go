// Package smtp sends mailer emails through an SMTP relay using go-mail.
//
// Transport security follows the port: 465 dials TLS directly, any other port
// connects in plaintext and requires a STARTTLS upgrade before authenticating.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/textproto"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/weiye465/Kindle-Transfer-App/pkg/mailer"
)

// Security is the connection security mode.
type Security int

const (
	// SecurityImplicitTLS dials TLS from connection start.
	SecurityImplicitTLS Security = iota
	// SecurityStartTLS upgrades a plaintext connection before authenticating.
	SecurityStartTLS
)

// SecurityFor returns the security mode implied by port.
func SecurityFor(port int) Security {
	if port == mailer.ImplicitTLSPort {
		return SecurityImplicitTLS
	}
	return SecurityStartTLS
}

func (s Security) String() string {
	if s == SecurityImplicitTLS {
		return "implicit-tls"
	}
	return "starttls"
}

// Config holds transport settings that are not per-user credentials.
type Config struct {
	// Auth selects the SMTP AUTH mechanism: plain, login or cram-md5.
	// Empty picks login for Outlook hosts and plain elsewhere.
	Auth string `yaml:"auth"`
}

// Sender implements mailer.Sender over SMTP.
type Sender struct {
	creds mailer.Credentials
	auth  mail.SMTPAuthType
	tls   *tls.Config
}

// New creates a Sender for creds.
func New(creds mailer.Credentials, cfg Config) (*Sender, error) {
	if creds.SMTPHost == "" {
		return nil, fmt.Errorf("%w: smtp host is required", mailer.ErrTransportFailed)
	}
	if creds.SMTPPort <= 0 {
		return nil, fmt.Errorf("%w: invalid smtp port %d", mailer.ErrTransportFailed, creds.SMTPPort)
	}
	return &Sender{creds: creds, auth: authType(cfg.Auth, creds.SMTPHost)}, nil
}

// Factory returns a mailer.SenderFactory building SMTP senders.
func Factory(cfg Config) mailer.SenderFactory {
	return func(creds mailer.Credentials) (mailer.Sender, error) {
		return New(creds, cfg)
	}
}

// Send dials, authenticates, transmits and closes the session.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	msg, err := buildMessage(email)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.creds.SMTPHost, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("%w: %v", mailer.ErrTransportFailed, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Sender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.creds.SMTPPort),
		mail.WithSMTPAuth(s.auth),
		mail.WithUsername(s.creds.SenderAddress),
		mail.WithPassword(s.creds.SenderSecret),
	}
	if s.tls != nil {
		opts = append(opts, mail.WithTLSConfig(s.tls))
	}
	if SecurityFor(s.creds.SMTPPort) == SecurityImplicitTLS {
		return append(opts, mail.WithSSL())
	}
	return append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
}

// buildMessage converts a mailer.Email into a MIME message with a plain-text
// body and base64-encoded attachments.
func buildMessage(email *mailer.Email) (*mail.Msg, error) {
	if len(email.To) == 0 {
		return nil, mailer.ErrNoRecipient
	}
	if email.From == "" {
		return nil, mailer.ErrNoSender
	}

	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Text)

	for _, a := range email.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		if err := msg.AttachReader(a.Filename, bytes.NewReader(a.Content),
			mail.WithFileContentType(mail.ContentType(ct)),
			mail.WithFileEncoding(mail.EncodingB64),
		); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}

	return msg, nil
}

func authType(name, host string) mail.SMTPAuthType {
	switch strings.ToLower(name) {
	case "plain":
		return mail.SMTPAuthPlain
	case "login":
		return mail.SMTPAuthLogin
	case "cram-md5":
		return mail.SMTPAuthCramMD5
	}
	if strings.Contains(strings.ToLower(host), "outlook") {
		return mail.SMTPAuthLogin
	}
	return mail.SMTPAuthPlain
}

// classify wraps err with ErrAuthFailed for credential rejections and
// ErrTransportFailed otherwise.
func classify(err error) error {
	if isAuthError(err) {
		return fmt.Errorf("%w: %v", mailer.ErrAuthFailed, err)
	}
	return fmt.Errorf("%w: %v", mailer.ErrTransportFailed, err)
}

func isAuthError(err error) bool {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case 530, 534, 535:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authentication failed") ||
		strings.Contains(msg, "failed to authenticate") ||
		strings.Contains(msg, "535 ")
}
