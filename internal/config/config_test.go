//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults for a development config", func(t *testing.T) {
		path := writeConfig(t, `
app:
  env: development
  base_url: https://tickets.example.com/
firestore:
  project_id: demo
`)
		cfg, err := LoadConfig(path, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.IsProduction() {
			t.Error("expected non-production config")
		}
		if cfg.App.BaseURL != "https://tickets.example.com" {
			t.Errorf("expected trailing slash trimmed, got %q", cfg.App.BaseURL)
		}
		if cfg.HTTP.Port != 8080 {
			t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
		}
		if cfg.Worker.Workers != 8 || cfg.Worker.QueueSize != 256 {
			t.Errorf("unexpected worker defaults: %+v", cfg.Worker)
		}
		if cfg.Redis.EventTTL != 72*time.Hour {
			t.Errorf("expected 72h event ttl, got %v", cfg.Redis.EventTTL)
		}
		if !cfg.Runtime.Dev {
			t.Error("expected runtime dev flag to be set")
		}
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		path := writeConfig(t, `
app:
  env: development
firestore:
  project_id: from-file
`)
		t.Setenv("FIRESTORE_PROJECT_ID", "from-env")
		t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
		t.Setenv("HTTP_PORT", "9090")

		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Firestore.ProjectID != "from-env" {
			t.Errorf("expected env project id, got %q", cfg.Firestore.ProjectID)
		}
		if cfg.Stripe.WebhookSecret != "whsec_env" {
			t.Errorf("expected env webhook secret, got %q", cfg.Stripe.WebhookSecret)
		}
		if cfg.HTTP.Port != 9090 {
			t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
		}
	})

	t.Run("missing file is allowed", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("FIRESTORE_PROJECT_ID", "demo")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.App.Env != EnvDevelopment {
			t.Errorf("expected development env, got %q", cfg.App.Env)
		}
	})

	t.Run("production defaults when env is unset", func(t *testing.T) {
		path := writeConfig(t, `
firestore:
  project_id: demo
`)
		_, err := LoadConfig(path, false)
		if err == nil || !strings.Contains(err.Error(), "webhook_secret") {
			t.Fatalf("expected webhook secret validation error, got %v", err)
		}
	})

	t.Run("unverified webhooks are rejected in production", func(t *testing.T) {
		path := writeConfig(t, `
app:
  env: production
  base_url: https://tickets.example.com
  allow_unverified_webhooks: true
stripe:
  secret_key: sk_live_x
  webhook_secret: whsec_x
firestore:
  project_id: demo
`)
		_, err := LoadConfig(path, false)
		if err == nil || !strings.Contains(err.Error(), "allow_unverified_webhooks") {
			t.Fatalf("expected allow_unverified_webhooks error, got %v", err)
		}
	})

	t.Run("unknown env is rejected", func(t *testing.T) {
		path := writeConfig(t, `
app:
  env: prod
firestore:
  project_id: demo
`)
		_, err := LoadConfig(path, false)
		if err == nil || !strings.Contains(err.Error(), "app.env") {
			t.Fatalf("expected app.env validation error, got %v", err)
		}
	})

	t.Run("env is matched case-insensitively", func(t *testing.T) {
		path := writeConfig(t, `
app:
  env: " Production "
  base_url: https://tickets.example.com
stripe:
  secret_key: sk_live_x
  webhook_secret: whsec_x
firestore:
  project_id: demo
`)
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.App.Env != EnvProduction || !cfg.IsProduction() {
			t.Errorf("expected normalized production env, got %q", cfg.App.Env)
		}
	})

	t.Run("valid production config", func(t *testing.T) {
		path := writeConfig(t, `
app:
  env: production
  base_url: https://tickets.example.com
stripe:
  secret_key: sk_live_x
  webhook_secret: whsec_x
firestore:
  project_id: demo
`)
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !cfg.IsProduction() {
			t.Error("expected production config")
		}
	})
}
