package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/adapter"

	"github.com/domodwyer/mailyak/v3"
	"github.com/rs/zerolog"
)

var _ adapter.TicketSender = (*SMTPSender)(nil)

// SMTPSender delivers ticket emails through an SMTP relay.
type SMTPSender struct {
	cfg  config.MailConfig
	addr string
	auth smtp.Auth
	log  *zerolog.Logger

	send func(*mailyak.MailYak) error
}

func NewSMTPSender(cfg config.MailConfig, logger *zerolog.Logger) *SMTPSender {
	l := logger.With().Str("component", "smtp_sender").Logger()
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &SMTPSender{
		cfg:  cfg,
		addr: cfg.SMTPHost + ":" + strconv.Itoa(cfg.SMTPPort),
		auth: auth,
		log:  &l,
		send: func(m *mailyak.MailYak) error { return m.Send() },
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *model.TicketMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mail, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.send(mail); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.log.Debug().Str("order_id", msg.Order.ID).Int("tickets", len(msg.Tickets)).Msg("ticket email handed to relay")
	return nil
}

func (s *SMTPSender) compose(msg *model.TicketMessage) (*mailyak.MailYak, error) {
	body, err := RenderHTML(msg)
	if err != nil {
		return nil, err
	}
	mail := mailyak.New(s.addr, s.auth)
	mail.To(msg.To)
	mail.From(s.cfg.FromAddress)
	fromName := s.cfg.FromName
	if msg.Seller != nil && msg.Seller.Name != "" {
		fromName = msg.Seller.Name
	}
	mail.FromName(fromName)
	if msg.Seller != nil && msg.Seller.Email != "" {
		mail.ReplyTo(msg.Seller.Email)
	}
	mail.Subject(msg.Subject)
	mail.HTML().Set(body)
	mail.Plain().Set(RenderText(msg))
	return mail, nil
}
