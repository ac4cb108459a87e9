package mailer

import "fmt"

// ImplicitTLSPort is the SMTP port that uses TLS from the first byte.
// Every other port starts in plaintext and upgrades with STARTTLS.
const ImplicitTLSPort = 465

// Credentials identify the sending mailbox and the destination device.
type Credentials struct {
	KindleAddress string `json:"kindle_email"`
	SenderAddress string `json:"smtp_email"`
	SenderSecret  string `json:"-"`
	SMTPHost      string `json:"smtp_server"`
	SMTPPort      int    `json:"smtp_port"`
}

// ImplicitTLS reports whether the connection must be TLS from the start.
func (c Credentials) ImplicitTLS() bool {
	return c.SMTPPort == ImplicitTLSPort
}

// String omits the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("%s -> %s via %s:%d", c.SenderAddress, c.KindleAddress, c.SMTPHost, c.SMTPPort)
}
