package mailer

import "context"

// Sender delivers a prepared Email over some transport.
type Sender interface {
	// Send delivers the email in a single attempt.
	// Transports wrap authentication failures with ErrAuthFailed and
	// connection or protocol failures with ErrTransportFailed.
	Send(ctx context.Context, email *Email) error
}

// SenderFactory builds a Sender for one set of credentials.
// Credentials are loaded per request, so transports are built per delivery.
type SenderFactory func(creds Credentials) (Sender, error)
