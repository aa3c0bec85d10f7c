package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QMS_API_URL", "")
	t.Setenv("QMS_POLL_INTERVAL_MS", "")
	t.Setenv("QMS_RECONNECT_DELAY_MS", "")
	t.Setenv("QMS_HTTP_TIMEOUT_SECONDS", "")
	t.Setenv("QMS_CREDENTIAL_BACKEND", "")

	cfg := Load()
	if cfg.APIURL != "http://localhost:8080" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.PublicURL != cfg.APIURL {
		t.Fatalf("expected public url to follow api url, got %q", cfg.PublicURL)
	}
	if cfg.PollInterval != 4000*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval)
	}
	if cfg.ReconnectDelay != 5*time.Second {
		t.Fatalf("unexpected reconnect delay %s", cfg.ReconnectDelay)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected transport default timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.CredentialBackend != "file" {
		t.Fatalf("unexpected backend %q", cfg.CredentialBackend)
	}
	if cfg.WSPath != "/ws-queue" {
		t.Fatalf("unexpected ws path %q", cfg.WSPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QMS_API_URL", "https://queue.example.com/")
	t.Setenv("QMS_PUBLIC_URL", "https://kiosk.example.com")
	t.Setenv("QMS_POLL_INTERVAL_MS", "1500")
	t.Setenv("QMS_REDIS_DB", "3")
	t.Setenv("QMS_CREDENTIAL_BACKEND", "Redis")
	t.Setenv("QMS_HTTP_TIMEOUT_SECONDS", "nope")

	cfg := Load()
	if cfg.APIURL != "https://queue.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.PublicURL != "https://kiosk.example.com" {
		t.Fatalf("unexpected public url %q", cfg.PublicURL)
	}
	if cfg.PollInterval != 1500*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected redis db %d", cfg.Redis.DB)
	}
	if cfg.CredentialBackend != "redis" {
		t.Fatalf("unexpected backend %q", cfg.CredentialBackend)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected invalid timeout to fall back, got %s", cfg.HTTPTimeout)
	}
}
