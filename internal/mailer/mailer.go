// Package mailer sends verification emails over SMTP. The notifier is
// fire-and-forget from the caller's point of view: it reports success or
// failure and never blocks beyond its configured timeout.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"time"

	"github.com/malik-javed/ez-secure-files/internal/logging"
)

// Config holds the SMTP relay parameters. When Enabled is false the mailer
// logs the verification link instead of sending anything, which is the
// development default.
type Config struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	From     string
	Timeout  time.Duration

	// BaseURL is the public address verification links point at.
	BaseURL string
}

type Mailer struct {
	cfg Config
	log *logging.Logger
}

func New(cfg Config, log *logging.Logger) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Mailer{cfg: cfg, log: log}
}

// SendVerification mails the one-time verification link to the address.
// A slow relay cannot stall the caller: the whole exchange is bounded by the
// configured timeout via a connection deadline.
func (m *Mailer) SendVerification(email, token string) error {
	verifyURL := fmt.Sprintf("%s/auth/verify?email=%s&token=%s", m.cfg.BaseURL, url.QueryEscape(email), token)

	if !m.cfg.Enabled {
		m.log.Info("verification email (sending disabled)", "to", email, "url", verifyURL)
		return nil
	}

	if m.cfg.Host == "" || m.cfg.User == "" || m.cfg.Password == "" {
		return fmt.Errorf("smtp not configured")
	}

	subject := "Verify your email address"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to the secure file sharing service!</h2>
			<p>Please click the link below to verify your email address:</p>
			<p><a href="%s">Verify Email</a></p>
			<p>Or copy and paste this URL into your browser:</p>
			<p>%s</p>
			<p>If you did not sign up for this service, please ignore this email.</p>
		</body>
		</html>`, verifyURL, verifyURL)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		m.cfg.From, email, subject, body,
	))

	if err := m.send(email, msg); err != nil {
		m.log.Error("verification email failed", "to", email, "error", err)
		return err
	}
	m.log.Info("verification email sent", "to", email)
	return nil
}

// send performs one SMTP exchange with a hard deadline on the connection.
func (m *Mailer) send(to string, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, m.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(m.cfg.Timeout)); err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	return client.Quit()
}
