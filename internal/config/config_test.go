package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 22 {
		t.Errorf("default port should be 22, got %d", cfg.Port)
	}
	if cfg.HistoryPath != "transfer_history.json" {
		t.Errorf("unexpected default history path %q", cfg.HistoryPath)
	}
	if cfg.SMTP.Enabled() {
		t.Error("notification should be disabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SFTPGRAB_HOST", "")
	path := filepath.Join(t.TempDir(), "sftpgrab.yaml")
	content := []byte("host: files.example.com\nport: 2222\nusername: alice\nhistory_path: /var/lib/sftpgrab/history.json\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "files.example.com" || cfg.Port != 2222 || cfg.Username != "alice" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.HistoryPath != "/var/lib/sftpgrab/history.json" {
		t.Errorf("history path not applied: %q", cfg.HistoryPath)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sftpgrab.yaml")
	if err := os.WriteFile(path, []byte("host: from-file\nport: 2222\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SFTPGRAB_HOST", "from-env")
	t.Setenv("SFTPGRAB_PORT", "2200")
	t.Setenv("SFTPGRAB_PASSWORD", "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "from-env" || cfg.Port != 2200 || cfg.Password != "hunter2" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("an explicitly named missing config file is an error")
	}
}

func TestParamsSnapshot(t *testing.T) {
	cfg := Config{Host: "h", Port: 22, Username: "u", Password: "p"}
	p := cfg.Params()
	if p.Host != "h" || p.Port != 22 || p.Username != "u" || p.Password != "p" {
		t.Errorf("params mismatch: %+v", p)
	}
}
