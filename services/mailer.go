// services/mailer.go
package services

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"time"
)

// Mailer sends plain-text notification mail through the SMTP relay named in
// the environment. Callers decide whether a delivery failure is fatal:
// signup notices to the platform admin are logged and swallowed, approval
// and rejection confirmations propagate the error.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewMailer() *Mailer {
	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
		timeout:  15 * time.Second,
	}
}

// AdminEmail is the platform operator's address, taken from the environment
// rather than baked into the binary.
func AdminEmail() string {
	return os.Getenv("ADMIN_EMAIL")
}

func (m *Mailer) Send(to, subject, body string) error {
	if m.host == "" || m.from == "" {
		return errors.New("smtp not configured")
	}
	port := m.port
	if port == "" {
		port = "587"
	}
	addr := net.JoinHostPort(m.host, port)

	conn, err := net.DialTimeout("tcp", addr, m.timeout)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	conn.SetDeadline(time.Now().Add(m.timeout))

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
