package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")

	// ErrNoSender indicates no sender address was specified.
	ErrNoSender = errors.New("mailer: email must have a sender")

	// ErrFileNotFound indicates the file to attach does not exist.
	ErrFileNotFound = errors.New("mailer: attachment not found")

	// ErrAttachmentTooLarge indicates the file exceeds the attachment limit.
	ErrAttachmentTooLarge = errors.New("mailer: attachment exceeds size limit")

	// ErrAuthFailed indicates the mail server rejected the credentials.
	ErrAuthFailed = errors.New("mailer: authentication failed")

	// ErrTransportFailed indicates a connection or protocol failure.
	ErrTransportFailed = errors.New("mailer: transport failed")

	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("mailer: template not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("mailer: failed to render template")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")
)
