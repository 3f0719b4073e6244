// Package mailer renders transactional email templates and delivers them
// over SMTP. It runs inside the worker process only.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Config carries SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// Mailer sends templated HTML email.
type Mailer struct {
	cfg       Config
	templates *template.Template
	logger    *slog.Logger
}

// New parses the embedded templates and constructs a Mailer.
func New(cfg Config, logger *slog.Logger) (*Mailer, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mailer: parse templates: %w", err)
	}
	return &Mailer{cfg: cfg, templates: templates, logger: logger}, nil
}

// Send renders the named template with vars and delivers it to a single
// recipient.
func (m *Mailer) Send(to, subject, templateName string, vars map[string]string) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName, vars); err != nil {
		return fmt.Errorf("mailer: render %s: %w", templateName, err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	if m.logger != nil {
		m.logger.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	}
	return nil
}
