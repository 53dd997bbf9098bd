package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://api.internal:9000")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "5")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("DRAFT_IDLE_TTL_MINUTES", "60")

	cfg := Load()

	if cfg.Upstream.BaseURL != "http://api.internal:9000" {
		t.Errorf("Upstream.BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("Upstream.Timeout = %v", cfg.Upstream.Timeout)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Drafts.IdleTTL != time.Hour {
		t.Errorf("Drafts.IdleTTL = %v", cfg.Drafts.IdleTTL)
	}
	if cfg.App.Name == "" {
		t.Error("App.Name should have a default")
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", Name: "console", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	want := "host=db user=u password=p dbname=console port=5432 sslmode=disable TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
