package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"bizdash/config"
)

// Message is a single outgoing email.
type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the driver named by MAIL_DRIVER. sendgrid without an API key falls back to console.
func New(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.MailDriver == "sendgrid" && cfg.SendgridAPIKey != "" {
		return NewSendgrid(cfg.SendgridAPIKey, cfg.AppName, cfg.MailFrom)
	}
	return NewConsole(logger)
}

// Console logs messages instead of sending them.
type Console struct {
	logger *slog.Logger
}

func NewConsole(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger}
}

func (m *Console) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail", "to", msg.To.String(), "subject", msg.Subject, "body", msg.Text)
	return nil
}

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Sendgrid delivers through the SendGrid v3 API.
type Sendgrid struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgrid(key, appName, fromEmail string) *Sendgrid {
	return &Sendgrid{
		key:        key,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (m *Sendgrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return v3
}

func (m *Sendgrid) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
