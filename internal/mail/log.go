package mail

import (
	"context"
	"log/slog"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

// LogSender writes orders to the log instead of sending them. Used when no
// email provider is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, order *domain.Order) error {
	s.log.InfoContext(ctx, "order email (not sent, no provider configured)",
		"reference", order.Reference,
		"subject", subject(order),
		"body", body(order))
	return nil
}
