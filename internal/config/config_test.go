package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Run.MaxMessages != 15 {
		t.Fatalf("unexpected batch cap: %d", cfg.Run.MaxMessages)
	}
	if cfg.Run.Timezone != "Asia/Seoul" || cfg.Run.Location() == nil {
		t.Fatalf("unexpected timezone: %q", cfg.Run.Timezone)
	}
	if cfg.Gmail.Query != "in:inbox is:unread" {
		t.Fatalf("unexpected query: %q", cfg.Gmail.Query)
	}
	if cfg.Classifier.Mode != "auto" || cfg.Classifier.TrainedMinClass != 3 {
		t.Fatalf("unexpected classifier defaults: %+v", cfg.Classifier)
	}
	if len(cfg.Vocab.ActionTerms) == 0 || len(cfg.Vocab.HardExcludePhrases) == 0 {
		t.Fatal("default vocabulary missing")
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
logging:
  level: debug
run:
  maxMessages: 5
  timezone: UTC
calendar:
  calendarId: work@example.com
vocab:
  noiseTerms: ["spam"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("level not merged: %q", cfg.Logging.Level)
	}
	if cfg.Run.MaxMessages != 5 || cfg.Run.Timezone != "UTC" {
		t.Fatalf("run section not merged: %+v", cfg.Run)
	}
	if cfg.Calendar.CalendarID != "work@example.com" {
		t.Fatalf("calendar not merged: %+v", cfg.Calendar)
	}
	if len(cfg.Vocab.NoiseTerms) != 1 || cfg.Vocab.NoiseTerms[0] != "spam" {
		t.Fatalf("vocab override lost: %+v", cfg.Vocab.NoiseTerms)
	}
	// Untouched sections keep their defaults.
	if cfg.Gmail.Query != "in:inbox is:unread" {
		t.Fatalf("default query clobbered: %q", cfg.Gmail.Query)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(judgeAPIKeyEnv, "sk-test")
	t.Setenv(gmailCredsEnv, "/tmp/creds.json")

	cfg := Load()
	if cfg.Judge.APIKey != "sk-test" {
		t.Fatalf("judge key not applied: %q", cfg.Judge.APIKey)
	}
	if cfg.Gmail.CredentialsFile != "/tmp/creds.json" {
		t.Fatalf("credentials path not applied: %q", cfg.Gmail.CredentialsFile)
	}
}

func TestRebindRecoversFromBadTimezone(t *testing.T) {
	cfg := defaultConfig()
	cfg.Run.Timezone = "Not/AZone"

	cfg = Rebind(cfg)
	if cfg.Run.Timezone != "Asia/Seoul" {
		t.Fatalf("bad timezone not reverted: %q", cfg.Run.Timezone)
	}
	if cfg.Run.Location().String() != "Asia/Seoul" {
		t.Fatalf("location not rebound: %v", cfg.Run.Location())
	}
}
