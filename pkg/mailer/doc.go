// Package mailer delivers documents to a Kindle address as email attachments.
//
// The package separates message composition from transport. A Dispatcher
// validates the file, renders the plain-text body from a template with YAML
// frontmatter, and hands the prepared Email to a Sender built for the
// caller's credentials. Transports live in subpackages:
//
//   - smtp: any SMTP relay; port 465 uses implicit TLS, others use STARTTLS
//   - resend: the Resend HTTP API
//
// # Usage
//
//	d := mailer.NewDispatcher(smtp.Factory(smtp.Config{}), mailer.WithLogger(log))
//
//	res := d.Deliver(ctx, mailer.Credentials{
//		KindleAddress: "me@kindle.com",
//		SenderAddress: "me@163.com",
//		SenderSecret:  "app-password",
//		SMTPHost:      "smtp.163.com",
//		SMTPPort:      465,
//	}, "uploads/20240102_150405_book.epub")
//
//	if !res.Success {
//		// res.Reason is one of not_found, oversized, auth, transport, unexpected
//	}
//
// # Subject
//
// The default subject is the literal "convert", which instructs the Kindle
// mail gateway to convert the document on its side. The built-in delivery
// template sets it through frontmatter:
//
//	---
//	Subject: convert
//	---
//	Sending {{.Filename}} to Kindle
//
// # Limits
//
// Files larger than MaxAttachmentSize (50 MiB) are rejected before any
// connection is made. Exactly 50 MiB is accepted.
//
// The attachment is named after the stored file with its timestamp prefix
// removed, so "20240102_150405_三体.epub" arrives as "三体.epub".
package mailer
