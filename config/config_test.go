package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	cfg := Load()

	if cfg.BaseURL != "https://www.slibuy.com" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.SQLitePath != filepath.Join("/tmp/xdg", "slibuy", "slibuy.db") {
		t.Errorf("SQLitePath: got %q", cfg.SQLitePath)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.PagePause != 300*time.Millisecond || cfg.RefreshInterval != 10*time.Second {
		t.Errorf("durations: pause %v, refresh %v", cfg.PagePause, cfg.RefreshInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SLIBUY_BASE_URL", "https://example.test/")
	t.Setenv("HEADLESS", "false")
	t.Setenv("PAGE_PAUSE_MS", "50")
	t.Setenv("MAX_CONCURRENCY", "not a number")
	cfg := Load()

	if cfg.BaseURL != "https://example.test" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Headless {
		t.Error("HEADLESS=false should disable headless")
	}
	if cfg.PagePause != 50*time.Millisecond {
		t.Errorf("PagePause: got %v", cfg.PagePause)
	}
	if cfg.MaxConcurrency != 2 {
		t.Errorf("bad MAX_CONCURRENCY should fall back to 2, got %d", cfg.MaxConcurrency)
	}
}

func TestURLs(t *testing.T) {
	cfg := &Config{BaseURL: "https://www.slibuy.com", SearchPath: "/search"}

	if got := cfg.SearchURL(3); got != "https://www.slibuy.com/search?page=3" {
		t.Errorf("SearchURL: got %q", got)
	}
	if got := cfg.PageURL("mybids"); got != "https://www.slibuy.com/mybids" {
		t.Errorf("PageURL: got %q", got)
	}
	if got := cfg.PageURL("https://other.test/x"); got != "https://other.test/x" {
		t.Errorf("PageURL absolute: got %q", got)
	}
}
