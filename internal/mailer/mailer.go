package mailer

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"backend/internal/config"
)

// Mailer sends transactional mail. Handlers depend on this interface so the
// dispatch path can be swapped out in tests.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// logMailer is the fallback when SMTP is unconfigured: it logs the message
// instead of delivering it, so development flows still complete.
type logMailer struct{}

// New returns an SMTP mailer when the config names a host, otherwise the
// log fallback.
func New(cfg config.Config) Mailer {
	if cfg.SMTPHost == "" {
		log.Println("[MAIL] [WARN] SMTP not configured, falling back to log delivery")
		return logMailer{}
	}
	return &smtpMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		log.Println("[MAIL] [INFO] mail sent to:", to)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (logMailer) Send(_ context.Context, to, subject, body string) error {
	log.Printf("[MAIL] [INFO] (log delivery) to=%s subject=%q\n%s", to, subject, body)
	return nil
}
