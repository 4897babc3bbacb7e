package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Dataset.Dir == "" || cfg.Dataset.URL != DefaultCorpusURL {
		t.Fatalf("unexpected dataset defaults: %+v", cfg.Dataset)
	}
	if cfg.Server.Addr == "" {
		t.Fatal("default server addr must not be empty")
	}
	if cfg.Metrics.Backend != "nop" {
		t.Fatalf("default metrics backend = %q, want nop", cfg.Metrics.Backend)
	}
	if issues := Validate(cfg); len(issues) != 0 {
		t.Fatalf("default config must validate cleanly, got %v", issues)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{
		"dataset": {"dir": "/srv/corpus", "url": "https://mirror.example.com/ms.tar.gz", "download": false},
		"server": {"addr": ":9090"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dataset.Dir != "/srv/corpus" || cfg.Dataset.Download {
		t.Fatalf("dataset not overridden: %+v", cfg.Dataset)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("server.addr = %q, want :9090", cfg.Server.Addr)
	}
	// Untouched sections keep their defaults.
	if cfg.Metrics.Backend != "nop" || cfg.Metrics.Job != "moviecorpus" {
		t.Fatalf("metrics defaults lost: %+v", cfg.Metrics)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{"datset": {"dir": "typo"}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsAPIKeyInFile(t *testing.T) {
	t.Parallel()

	// The api key must come from the environment; a file carrying one is a
	// config mistake and trips the unknown-field check.
	path := writeConfig(t, `{"classifier": {"enabled": true, "api_key": "secret"}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when the config file carries an api key")
	}
}
