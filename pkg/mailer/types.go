package mailer

import "fmt"

// Tags are provider-specific labels. Values may be presence-only (struct{}{})
// or key-value. Transports without tag support ignore them.
type Tags map[string]any

// Recipient formats a name and address as "Name <email>".
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a fully-prepared message ready for a Sender.
type Email struct {
	Tags        Tags
	Subject     string
	Text        string
	From        string
	To          []string
	Attachments []Attachment
}

// Attachment is a file attached to an Email.
type Attachment struct {
	Filename    string // display name, may contain non-ASCII characters
	ContentType string
	Content     []byte
}

// Size returns the total attachment payload in bytes.
func (e *Email) Size() int64 {
	var n int64
	for _, a := range e.Attachments {
		n += int64(len(a.Content))
	}
	return n
}
