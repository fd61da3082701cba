// Package email implementa el envío de notificaciones por SMTP. Sin SMTP
// configurado el mailer queda deshabilitado y los envíos son no-ops: el API
// nunca depende del correo para responder.
package email

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// Sender envía un email a un destinatario.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
	Enabled() bool
}

// Config es la configuración SMTP.
type Config struct {
	Host      string
	Port      int // default 587
	Username  string
	Password  string
	FromEmail string
	TLSMode   string // "auto" | "starttls" | "ssl" | "none"
}

// Configured reporta si hay un servidor SMTP utilizable.
func (c Config) Configured() bool {
	return c.Host != "" && c.FromEmail != ""
}

// New crea el sender según la config: SMTP real o no-op.
func New(cfg Config) Sender {
	if !cfg.Configured() {
		return nopSender{}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &smtpSender{cfg: cfg}
}

type smtpSender struct {
	cfg Config
}

func (s *smtpSender) Enabled() bool { return true }

func (s *smtpSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.L().With(
		logger.Component("smtp"),
		logger.String("host", s.cfg.Host),
		logger.String("to", to),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}

	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{}
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si el server lo ofrece.
	}

	if err := d.DialAndSend(m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Debug("email sent")
	return nil
}

// nopSender descarta los envíos. Se usa cuando SMTP no está configurado.
type nopSender struct{}

func (nopSender) Enabled() bool { return false }

func (nopSender) Send(to, subject, htmlBody, textBody string) error {
	logger.L().Debug("email disabled, dropping message", logger.String("to", to))
	return nil
}
