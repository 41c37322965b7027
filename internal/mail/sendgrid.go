package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

type SendGridConfig struct {
	APIKey string
	// Host defaults to the public SendGrid API.
	Host  string
	From  string
	Inbox string
}

// SendGridSender emails each order to the store inbox with the customer as reply-to.
type SendGridSender struct {
	cfg SendGridConfig
	log *slog.Logger
}

func NewSendGridSender(cfg SendGridConfig, log *slog.Logger) *SendGridSender {
	if cfg.Host == "" {
		cfg.Host = "https://api.sendgrid.com"
	}
	if log == nil {
		log = slog.Default()
	}
	return &SendGridSender{cfg: cfg, log: log}
}

func (s *SendGridSender) Send(ctx context.Context, order *domain.Order) error {
	if s.cfg.APIKey == "" {
		return errors.New("sendgrid api key is empty")
	}
	if s.cfg.From == "" {
		return errors.New("from address is empty")
	}
	if s.cfg.Inbox == "" {
		return errors.New("inbox address is empty")
	}

	text := body(order)
	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("Círculo Matero", s.cfg.From),
		subject(order),
		sgmail.NewEmail("Pedidos", s.cfg.Inbox),
		text,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(text)),
	)
	message.SetReplyTo(sgmail.NewEmail(order.Contact.Name, order.Contact.Email))

	request := sendgrid.GetRequest(s.cfg.APIKey, sendEndpoint, s.cfg.Host)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}

	if response.StatusCode >= 400 {
		s.log.ErrorContext(ctx, "sendgrid rejected order email",
			"status", response.StatusCode,
			"body", response.Body,
			"reference", order.Reference)
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	s.log.InfoContext(ctx, "order email sent", "status", response.StatusCode, "reference", order.Reference)
	return nil
}
