package email

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

// SMTPConfig describes the relay used to deliver encoded messages.
type SMTPConfig struct {
	Addr      string
	Username  string
	Password  string
	From      string
	TLSServer string
}

func (c SMTPConfig) host() string {
	host, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return c.Addr
	}
	return host
}

// Mailer sends wheel-encoded messages. Only codes travel by mail; the key
// never does.
type Mailer struct {
	cfg  SMTPConfig
	send func(e *email.Email) error
}

func NewMailer(cfg SMTPConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	m.send = m.sendWithTLS
	return m
}

func (m *Mailer) sendWithTLS(e *email.Email) error {
	host := m.cfg.host()
	serverName := m.cfg.TLSServer
	if serverName == "" {
		serverName = host
	}
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, host)
	return e.SendWithTLS(m.cfg.Addr, auth, &tls.Config{InsecureSkipVerify: false, ServerName: serverName})
}

// SendEncoded mails an encoded message. A non-empty tag is appended as a
// "check:" line so the recipient can verify the decoded text.
func (m *Mailer) SendEncoded(recipients []string, subject, encoded, tag string) error {
	if m.cfg.Addr == "" {
		return fmt.Errorf("SMTP relay not configured")
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = recipients
	e.Subject = subject
	e.Text = []byte(messageBody(encoded, tag))

	if err := m.send(e); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// messageBody puts the codes in lines of ten so they are easy to copy by hand.
func messageBody(encoded, tag string) string {
	codes := strings.Fields(encoded)
	var sb strings.Builder
	for i, code := range codes {
		if i > 0 {
			if i%10 == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(strings.ToUpper(code))
	}
	sb.WriteByte('\n')
	if tag != "" {
		fmt.Fprintf(&sb, "\ncheck: %s\n", tag)
	}
	return sb.String()
}
