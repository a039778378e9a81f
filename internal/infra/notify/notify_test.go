//go:build !integration

package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/domain/model"

	"github.com/domodwyer/mailyak/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() *model.TicketMessage {
	return &model.TicketMessage{
		To:      "buyer@example.com",
		Subject: "Your tickets for Hamlet",
		Order:   &model.Order{ID: "ord-1", TotalAmount: 5025, Currency: "usd"},
		Tickets: []*model.Ticket{
			{ID: "t1", Section: "Orchestra", Row: "A", SeatNumber: "1", AccessLink: "https://tickets.example.com/orders/ord-1?token=abc"},
		},
		Performance: &model.Performance{Date: "2026-11-02", Time: "19:30"},
		Venue:       &model.Venue{Name: "Grand Hall", Address: "Springfield, IL 62701"},
		Production:  &model.Production{Title: "Hamlet <Live>"},
		Seller:      &model.Seller{Name: "Box Office", Email: "box@example.com"},
	}
}

func TestRenderHTML(t *testing.T) {
	body, err := RenderHTML(testMessage())

	require.NoError(t, err)
	assert.Contains(t, body, "Hamlet &lt;Live&gt;")
	assert.Contains(t, body, "2026-11-02 at 19:30")
	assert.Contains(t, body, "Grand Hall, Springfield, IL 62701")
	assert.Contains(t, body, "50.25 USD")
	assert.Contains(t, body, `href="https://tickets.example.com/orders/ord-1?token=abc"`)
	assert.Contains(t, body, "box@example.com")
}

func TestRenderHTML_MinimalMessage(t *testing.T) {
	msg := &model.TicketMessage{
		Order:       &model.Order{ID: "ord-2"},
		Performance: &model.Performance{},
		Venue:       &model.Venue{},
		Production:  &model.Production{},
		Seller:      &model.Seller{},
	}

	body, err := RenderHTML(msg)

	require.NoError(t, err)
	assert.Contains(t, body, "Your tickets")
	assert.Contains(t, body, "ord-2")
}

func TestRenderText(t *testing.T) {
	text := RenderText(testMessage())

	assert.True(t, strings.HasPrefix(text, "Hamlet <Live>\n"))
	assert.Contains(t, text, "Section Orchestra, row A, seat 1: https://tickets.example.com/orders/ord-1?token=abc")
}

func TestSMTPSender_Send(t *testing.T) {
	logger := zerolog.Nop()
	cfg := config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, FromAddress: "tickets@example.com", FromName: "Tickets"}

	t.Run("hands the composed mail to the relay", func(t *testing.T) {
		s := NewSMTPSender(cfg, &logger)
		var sent *mailyak.MailYak
		s.send = func(m *mailyak.MailYak) error { sent = m; return nil }

		require.NoError(t, s.Send(context.Background(), testMessage()))
		require.NotNil(t, sent)

		buf, err := sent.MimeBuf()
		require.NoError(t, err)
		mime := buf.String()
		assert.Contains(t, mime, "buyer@example.com")
		assert.Contains(t, mime, "Reply-To:")
	})

	t.Run("relay errors are returned", func(t *testing.T) {
		s := NewSMTPSender(cfg, &logger)
		s.send = func(*mailyak.MailYak) error { return errors.New("421 try later") }

		err := s.Send(context.Background(), testMessage())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "421")
	})

	t.Run("cancelled context is not sent", func(t *testing.T) {
		s := NewSMTPSender(cfg, &logger)
		called := false
		s.send = func(*mailyak.MailYak) error { called = true; return nil }
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, s.Send(ctx, testMessage()), context.Canceled)
		assert.False(t, called)
	})
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	require.NoError(t, NewLogSender(&logger, true).Send(context.Background(), testMessage()))
	assert.Contains(t, buf.String(), "ord-1")
	assert.Contains(t, buf.String(), "token=abc")
}

func TestLogSender_RedactsTokens(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	require.NoError(t, NewLogSender(&logger, false).Send(context.Background(), testMessage()))
	assert.Contains(t, buf.String(), "ord-1")
	assert.NotContains(t, buf.String(), "token=abc")
}
