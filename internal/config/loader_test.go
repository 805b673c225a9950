package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("default config not written: %v", statErr)
	}

	want := Default()
	if cfg.RoomID != want.RoomID || cfg.HistoryLimit != want.HistoryLimit || cfg.DialTimeout != want.DialTimeout {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.BaseURL != "" {
		t.Fatalf("base url should default to empty, got %q", cfg.BaseURL)
	}
}

func TestLoadFilePrecedenceAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	body := []byte("base_url: https://rooms.example.com/\nroom_id: lobby\nhistory_limit: 50\ndial_timeout: 3s\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("WIRECHAT_ROOM_ID", "  from-env  ")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://rooms.example.com/" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.RoomID != "from-env" {
		t.Fatalf("env should override file and be trimmed, got %q", cfg.RoomID)
	}
	if cfg.HistoryLimit != 50 {
		t.Fatalf("history limit = %d", cfg.HistoryLimit)
	}
	if cfg.DialTimeout != 3*time.Second {
		t.Fatalf("dial timeout = %v", cfg.DialTimeout)
	}
	if cfg.WorldWidth != 800 || cfg.WorldHeight != 600 {
		t.Fatalf("world size defaults lost: %vx%v", cfg.WorldWidth, cfg.WorldHeight)
	}
}

func TestUpdateFromOverridesNonZero(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{BaseURL: "wss://a.b", RoomID: "r2"})

	if cfg.BaseURL != "wss://a.b" || cfg.RoomID != "r2" {
		t.Fatalf("override not applied: %+v", cfg)
	}
	if cfg.MoveSpeed != Default().MoveSpeed {
		t.Fatalf("zero field should not override: %v", cfg.MoveSpeed)
	}
}
