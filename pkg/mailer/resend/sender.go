// Package resend sends mailer emails through the Resend HTTP API.
//
// It is an alternative to SMTP for deployments where outbound SMTP ports are
// blocked. The sender address must belong to a domain verified in Resend and
// be on the Kindle approved sender list.
package resend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/weiye465/Kindle-Transfer-App/pkg/mailer"
)

// Config holds Resend settings.
type Config struct {
	APIKey     string `yaml:"api_key"`
	SenderName string `yaml:"sender_name"`
}

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a Resend sender.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: resend api key is required", mailer.ErrAuthFailed)
	}
	return &Sender{client: resend.NewClient(cfg.APIKey), config: cfg}, nil
}

// Factory returns a mailer.SenderFactory. Credentials are not used beyond the
// sender address, which the Dispatcher already puts in Email.From.
func Factory(cfg Config) mailer.SenderFactory {
	return func(mailer.Credentials) (mailer.Sender, error) {
		return New(cfg)
	}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if len(email.To) == 0 {
		return mailer.ErrNoRecipient
	}
	if email.From == "" {
		return mailer.ErrNoSender
	}

	req := &resend.SendEmailRequest{
		From:    mailer.Recipient(s.config.SenderName, email.From),
		To:      email.To,
		Subject: email.Subject,
		Text:    email.Text,
	}

	if len(email.Attachments) > 0 {
		req.Attachments = convertAttachments(email.Attachments)
	}
	if len(email.Tags) > 0 {
		req.Tags = convertTags(email.Tags)
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return classify(err)
	}
	return nil
}

func convertAttachments(attachments []mailer.Attachment) []*resend.Attachment {
	out := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		out[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		}
	}
	return out
}

func convertTags(tags mailer.Tags) []resend.Tag {
	out := make([]resend.Tag, 0, len(tags))
	for name, value := range tags {
		out = append(out, resend.Tag{Name: name, Value: tagValue(value)})
	}
	return out
}

// tagValue renders a tag value; presence-only tags become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// classify maps API key rejections to ErrAuthFailed.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "api key") || strings.Contains(msg, "401") || strings.Contains(msg, "403") {
		return errors.Join(mailer.ErrAuthFailed, err)
	}
	return errors.Join(mailer.ErrTransportFailed, err)
}
