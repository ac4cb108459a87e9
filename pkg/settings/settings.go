package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/weiye465/Kindle-Transfer-App/pkg/mailer"
)

const (
	// Mask replaces the stored password whenever settings are shown.
	Mask = "********"

	DefaultSMTPServer = "smtp.163.com"
	DefaultSMTPPort   = 465
)

// Settings is the user-editable delivery configuration.
type Settings struct {
	KindleEmail  string `json:"kindle_email,omitempty"`
	SMTPEmail    string `json:"smtp_email,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`
	SMTPServer   string `json:"smtp_server,omitempty"`
	SMTPPort     Port   `json:"smtp_port,omitempty"`
}

// Masked returns a copy safe to show to a client.
func (s Settings) Masked() Settings {
	if s.SMTPPassword != "" {
		s.SMTPPassword = Mask
	}
	return s
}

// Credentials resolves delivery credentials. Missing server or port values
// are filled from the sender's domain defaults.
func (s Settings) Credentials() (mailer.Credentials, error) {
	if s.KindleEmail == "" {
		return mailer.Credentials{}, ErrMissingDestination
	}
	if s.SMTPEmail == "" || s.SMTPPassword == "" {
		return mailer.Credentials{}, ErrMissingSender
	}

	host, port := s.SMTPServer, int(s.SMTPPort)
	if host == "" && port == 0 {
		host, port = SMTPDefaults(s.SMTPEmail)
	}
	if host == "" {
		host = DefaultSMTPServer
	}
	if port == 0 {
		port = DefaultSMTPPort
	}

	return mailer.Credentials{
		KindleAddress: s.KindleEmail,
		SenderAddress: s.SMTPEmail,
		SenderSecret:  s.SMTPPassword,
		SMTPHost:      host,
		SMTPPort:      port,
	}, nil
}

// Port is an SMTP port that decodes from either a JSON number or string,
// since browser forms and environment variables produce strings.
type Port int

func (p *Port) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == `""` {
		*p = 0
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("%w: %s", ErrInvalidPort, string(b))
	}
	*p = Port(n)
	return nil
}

func (p Port) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(p))
}

// ParsePort parses a decimal port number.
func ParsePort(s string) (Port, error) {
	var p Port
	if err := p.UnmarshalJSON([]byte(strconv.Quote(s))); err != nil {
		return 0, err
	}
	return p, nil
}
