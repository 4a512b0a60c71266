package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("CARD_PAGES", "")
	t.Setenv("REGISTRATION_PREFIX", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != StoreSQLite {
		t.Fatalf("expected sqlite driver, got %s", cfg.StoreDriver)
	}
	if cfg.Address() != ":8000" {
		t.Fatalf("expected :8000, got %s", cfg.Address())
	}
	if cfg.RegistrationFee != 6000 {
		t.Fatalf("expected fee 6000, got %v", cfg.RegistrationFee)
	}
	if cfg.RegPrefix != "FHP" {
		t.Fatalf("expected FHP prefix, got %s", cfg.RegPrefix)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CARD_PAGES", "front_only")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("REGISTRATION_PREFIX", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s shutdown, got %s", cfg.ShutdownPeriod)
	}
	if cfg.CardPages != "front_only" {
		t.Fatalf("expected front_only, got %s", cfg.CardPages)
	}
	if cfg.RegPrefix != "ABC" {
		t.Fatalf("expected upper-cased prefix, got %s", cfg.RegPrefix)
	}
}

func TestLoadRejectsPostgresWithoutURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}

func TestLoadRejectsUnknownPages(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CARD_PAGES", "both")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown CARD_PAGES")
	}
}
