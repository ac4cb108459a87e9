package settings

import (
	"strings"

	"golang.org/x/text/cases"
)

type smtpDefault struct {
	domain string
	host   string
	port   int
}

// Checked in order; the first domain contained in the address wins.
var smtpDefaults = []smtpDefault{
	{"163.com", "smtp.163.com", 465},
	{"126.com", "smtp.126.com", 465},
	{"qq.com", "smtp.qq.com", 587},
	{"gmail.com", "smtp.gmail.com", 587},
	{"outlook.com", "smtp-mail.outlook.com", 587},
	{"hotmail.com", "smtp-mail.outlook.com", 587},
	{"yeah.net", "smtp.yeah.net", 465},
	{"sina.com", "smtp.sina.com", 465},
	{"sohu.com", "smtp.sohu.com", 465},
}

// SMTPDefaults returns the SMTP server and port for an email address by
// case-insensitive substring match on known provider domains. Unknown
// providers get smtp.163.com:465.
func SMTPDefaults(email string) (host string, port int) {
	email = cases.Fold().String(email)
	for _, d := range smtpDefaults {
		if strings.Contains(email, d.domain) {
			return d.host, d.port
		}
	}
	return DefaultSMTPServer, DefaultSMTPPort
}
