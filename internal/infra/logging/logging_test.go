//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"ticket-marketplace/internal/config"
)

func TestWithAttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, config.LogConfig{Level: "debug", Format: "json"}, false)

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithEventID(ctx, "evt_1")
	ctx = WithOrderID(ctx, "ord_1")

	With(ctx, base).Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	for k, want := range map[string]string{"trace_id": "trace-1", "event_id": "evt_1", "order_id": "ord_1"} {
		if entry[k] != want {
			t.Errorf("expected %s=%q, got %v", k, want, entry[k])
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)

	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Fatal("expected warn to be written")
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("abc", false); got != "***" {
		t.Errorf("expected short values fully hidden, got %q", got)
	}
	if got := Redact("0123456789abcdef", false); got != "0123...ef" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := Redact("0123456789abcdef", true); got != "0123456789abcdef" {
		t.Errorf("expected dev mode passthrough, got %q", got)
	}
}

func TestTraceDuration(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, config.LogConfig{Level: "trace", Format: "json"}, false)

	TraceDuration(l, "orderUC.EnsureOrder")()

	out := buf.String()
	for _, want := range []string{`"method":"orderUC.EnsureOrder"`, `"message":"start"`, `"message":"finish"`, `"duration"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %q", want, out)
		}
	}
}
