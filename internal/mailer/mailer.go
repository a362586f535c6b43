// Package mailer renders and sends the ticket confirmation email.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

const subjectFormat = "Confirmación de Vuelo - %s | AeroFlash Airlines"

// ErrNoRecipient is returned for tickets without a passenger email
var ErrNoRecipient = errors.New("ticket has no passenger email")

// Config holds the SMTP relay settings
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	SenderName  string
	Timeout     time.Duration
}

// Transport delivers rendered messages. *mail.Client implements it.
type Transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// NewSMTPTransport creates a STARTTLS client with plain authentication
func NewSMTPTransport(cfg *Config) (*mail.Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithTimeout(timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client, nil
}

// Mailer sends ticket confirmations
type Mailer struct {
	transport  Transport
	sender     string
	senderName string
	html       *htmltemplate.Template
	text       *texttemplate.Template
}

// New parses the embedded templates
func New(transport Transport, cfg *Config) (*Mailer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/ticket.html")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/ticket.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}
	name := cfg.SenderName
	if name == "" {
		name = "AeroFlash Airlines"
	}
	return &Mailer{
		transport:  transport,
		sender:     cfg.SenderEmail,
		senderName: name,
		html:       html,
		text:       text,
	}, nil
}

// Subject is the confirmation subject for a ticket code
func Subject(code string) string {
	return fmt.Sprintf(subjectFormat, code)
}

// RenderText renders the plain text body
func (m *Mailer) RenderText(t *domain.Ticket) (string, error) {
	var buf bytes.Buffer
	if err := m.text.Execute(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHTML renders the HTML body
func (m *Mailer) RenderHTML(t *domain.Ticket) (string, error) {
	var buf bytes.Buffer
	if err := m.html.Execute(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Build assembles the multipart message: plain text first, HTML alternative
func (m *Mailer) Build(t *domain.Ticket) (*mail.Msg, error) {
	if t.Pasajero.Correo == "" {
		return nil, ErrNoRecipient
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.senderName, m.sender); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(t.Pasajero.Correo); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(Subject(t.CodigoTicket))
	if err := msg.SetBodyTextTemplate(m.text, t); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	if err := msg.AddAlternativeHTMLTemplate(m.html, t); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	return msg, nil
}

// SendTicket emails the confirmation to the passenger
func (m *Mailer) SendTicket(ctx context.Context, t *domain.Ticket) error {
	msg, err := m.Build(t)
	if err != nil {
		return err
	}
	if err := m.transport.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send ticket email: %w", err)
	}
	return nil
}
