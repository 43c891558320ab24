package syncconfig

import (
	"testing"
	"time"

	"github.com/evanklingensmith/hungrymarmots/internal/models"
)

func TestLoadMissingConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Profile.UID != "" || cfg.Household != "" {
		t.Fatalf("missing config not zero: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	saved := &Config{
		Profile:   models.User{UID: "uid_1", Email: "a@example.com", DisplayName: "Alice"},
		Household: "hh_1",
		Sync:      SyncTuning{Debounce: "250ms", WriteTimeout: "5s"},
	}

	if err := Save(dir, saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Profile != saved.Profile {
		t.Fatalf("profile: got %+v, want %+v", loaded.Profile, saved.Profile)
	}
	if loaded.Household != "hh_1" {
		t.Fatalf("household: got %q", loaded.Household)
	}
	if loaded.DebounceInterval() != 250*time.Millisecond {
		t.Fatalf("debounce: got %v", loaded.DebounceInterval())
	}
	if loaded.WriteTimeout() != 5*time.Second {
		t.Fatalf("write timeout: got %v", loaded.WriteTimeout())
	}
}

func TestTuningDefaults(t *testing.T) {
	var cfg Config
	if cfg.DebounceInterval() != DefaultDebounce {
		t.Fatalf("debounce default: got %v", cfg.DebounceInterval())
	}
	if cfg.WriteTimeout() != DefaultWriteTimeout {
		t.Fatalf("write timeout default: got %v", cfg.WriteTimeout())
	}
}

func TestTuningRejectsInvalidDurations(t *testing.T) {
	cfg := Config{Sync: SyncTuning{Debounce: "banana", WriteTimeout: "-3s"}}
	if cfg.DebounceInterval() != DefaultDebounce {
		t.Fatalf("invalid debounce: got %v", cfg.DebounceInterval())
	}
	if cfg.WriteTimeout() != DefaultWriteTimeout {
		t.Fatalf("negative timeout: got %v", cfg.WriteTimeout())
	}
}
