// Package settings stores the delivery configuration: the Kindle address,
// the sending mailbox and its SMTP server.
//
// FileStore persists a flat JSON document compatible with earlier releases:
//
//	{
//	  "kindle_email": "me@kindle.com",
//	  "smtp_email": "me@163.com",
//	  "smtp_password": "app-password",
//	  "smtp_server": "smtp.163.com",
//	  "smtp_port": 465
//	}
//
// Non-empty KINDLE_EMAIL, SMTP_EMAIL, SMTP_PASSWORD, SMTP_SERVER and
// SMTP_PORT environment variables override stored values on Load.
//
// # Password masking
//
// Settings.Masked replaces the password with Mask ("********") for display.
// When a client saves settings with the password still equal to Mask, the
// stored password is kept:
//
//	shown := s.Masked()          // shown.SMTPPassword == "********"
//	_ = store.Save(ctx, shown)   // stored password unchanged
//
// # SMTP defaults
//
// SMTPDefaults maps well-known providers to their server and port. It is used
// by Settings.Credentials when neither server nor port is configured.
package settings
