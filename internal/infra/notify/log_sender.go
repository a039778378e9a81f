package notify

import (
	"context"
	"net/url"

	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/adapter"
	"ticket-marketplace/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ adapter.TicketSender = (*LogSender)(nil)

// LogSender logs ticket emails instead of sending them. Used when no SMTP host is configured.
// View tokens in links are redacted unless dev is set.
type LogSender struct {
	log *zerolog.Logger
	dev bool
}

func NewLogSender(logger *zerolog.Logger, dev bool) *LogSender {
	l := logger.With().Str("component", "log_sender").Logger()
	return &LogSender{log: &l, dev: dev}
}

func (s *LogSender) Send(ctx context.Context, msg *model.TicketMessage) error {
	links := make([]string, 0, len(msg.Tickets))
	for _, t := range msg.Tickets {
		links = append(links, s.redactLink(t.AccessLink))
	}
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("order_id", msg.Order.ID).
		Strs("links", links).
		Msg("ticket email (not sent)")
	return nil
}

func (s *LogSender) redactLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return logging.Redact(link, s.dev)
	}
	q := u.Query()
	if tok := q.Get("token"); tok != "" {
		q.Set("token", logging.Redact(tok, s.dev))
		u.RawQuery = q.Encode()
	}
	return u.String()
}
