package auth

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	goerrors "github.com/goliatone/go-errors"
)

// TemplateActivationCode is the template name the account flows use when
// dispatching activation codes.
const TemplateActivationCode = "activation_code"

// DefaultActivationSubject is used when a message carries no subject.
const DefaultActivationSubject = "Your activation code"

var defaultTemplates = map[string]string{
	TemplateActivationCode: `<html>
<body>
	<p>Hi {{.first_name}},</p>
	<p>Your activation code is <strong>{{.code}}</strong>.</p>
	<p>Enter it together with the activation link to verify your account.
	The code expires in {{.ttl}}.</p>
</body>
</html>`,
}

// SMTPMailer delivers templated HTML email over plain SMTP.
type SMTPMailer struct {
	host      string
	port      string
	username  string
	password  string
	from      string
	templates *template.Template
	logger    Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// SMTPMailerOption customizes mailer construction.
type SMTPMailerOption func(*SMTPMailer)

// WithMailerLogger overrides the mailer logger.
func WithMailerLogger(logger Logger) SMTPMailerOption {
	return func(m *SMTPMailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMailerTemplate registers or overrides a named body template.
func WithMailerTemplate(name, body string) SMTPMailerOption {
	return func(m *SMTPMailer) {
		template.Must(m.templates.New(name).Parse(body))
	}
}

// NewSMTPMailer creates an SMTP-backed Mailer from the shared Config.
func NewSMTPMailer(cfg *Config, opts ...SMTPMailerOption) (*SMTPMailer, error) {
	if cfg == nil {
		return nil, goerrors.New("config is required", goerrors.CategoryBadInput)
	}

	if cfg.SMTPHost == "" || cfg.SMTPPort == "" || cfg.SMTPFrom == "" {
		return nil, goerrors.New("SMTP host, port, and from address are required", goerrors.CategoryValidation)
	}

	templates := template.New("mailer")
	for name, body := range defaultTemplates {
		template.Must(templates.New(name).Parse(body))
	}

	m := &SMTPMailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		from:      cfg.SMTPFrom,
		templates: templates,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m, nil
}

// Send renders the named template and delivers the message. Failures
// normalize to the delivery error so callers can map them uniformly.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during notification dispatch")
	default:
	}

	body, err := renderTemplate(m.templates, msg.Template, msg.Data)
	if err != nil {
		return goerrors.Wrap(err, ErrDeliveryFailed.Category, ErrDeliveryFailed.Message).
			WithTextCode(ErrDeliveryFailed.TextCode).
			WithCode(ErrDeliveryFailed.Code)
	}

	subject := msg.Subject
	if subject == "" {
		subject = DefaultActivationSubject
	}

	payload := []byte(fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		msg.To, m.from, subject, body,
	))

	var smtpAuth smtp.Auth
	if m.username != "" {
		smtpAuth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := smtp.SendMail(addr, smtpAuth, m.from, []string{msg.To}, payload); err != nil {
		m.logger.Error("SMTP send failed", "to", msg.To, "error", err)
		return goerrors.Wrap(err, ErrDeliveryFailed.Category, ErrDeliveryFailed.Message).
			WithTextCode(ErrDeliveryFailed.TextCode).
			WithCode(ErrDeliveryFailed.Code)
	}

	m.logger.Info("notification dispatched", "to", msg.To, "template", msg.Template)
	return nil
}

func renderTemplate(templates *template.Template, name string, data map[string]any) (string, error) {
	tpl := templates.Lookup(name)
	if tpl == nil {
		return "", fmt.Errorf("unknown template: %s", name)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// noopMailer swallows messages. Used as the default when no gateway is
// configured, e.g. in tests.
type noopMailer struct{}

func (noopMailer) Send(context.Context, Message) error { return nil }
