package config

import (
	"reflect"
	"testing"
	"time"
)

func TestScopusAPIKeysFromEnvKeepsOrderAndDropsDuplicates(t *testing.T) {
	t.Setenv("SCOPUS_API_KEYS", " k1, k2 ,,k1")
	t.Setenv("SCOPUS_API_KEY", "k3")

	got := ScopusAPIKeysFromEnv()
	want := []string{"k1", "k2", "k3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestScopusAPIKeysFromEnvEmpty(t *testing.T) {
	t.Setenv("SCOPUS_API_KEYS", "")
	t.Setenv("SCOPUS_API_KEY", "")

	if got := ScopusAPIKeysFromEnv(); len(got) != 0 {
		t.Fatalf("expected no keys, got %v", got)
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("SCOPUS_BASE_URL", "")
	t.Setenv("SCRAPER_ENABLED", "false")
	t.Setenv("SCRAPER_NAV_TIMEOUT", "45")
	t.Setenv("SCRAPER_RENDER_TIMEOUT", "2s")
	t.Setenv("SCOPUS_HTTP_TIMEOUT", "nonsense")
	t.Setenv("SERVER_PORT", "")

	cfg := Load()
	if cfg.ScopusBaseURL != defaultScopusBaseURL {
		t.Fatalf("unexpected base url %q", cfg.ScopusBaseURL)
	}
	if cfg.ScraperEnabled {
		t.Fatalf("expected scraper disabled")
	}
	if cfg.ScraperNavTimeout != 45*time.Second {
		t.Fatalf("unexpected nav timeout %v", cfg.ScraperNavTimeout)
	}
	if cfg.ScraperRenderTimeout != 2*time.Second {
		t.Fatalf("unexpected render timeout %v", cfg.ScraperRenderTimeout)
	}
	if cfg.ScopusHTTPTimeout != 30*time.Second {
		t.Fatalf("invalid duration should fall back, got %v", cfg.ScopusHTTPTimeout)
	}
	if cfg.ServerPort != defaultServerPort {
		t.Fatalf("unexpected port %q", cfg.ServerPort)
	}
}
