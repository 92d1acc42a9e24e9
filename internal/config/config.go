// Package config loads tool configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"sftpgrab/internal/models"
)

// SMTP holds optional settings for the transfer report mail. Notification
// is disabled unless From, Pass and To are all set.
type SMTP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	From string `yaml:"from"`
	Pass string `yaml:"pass"`
	To   string `yaml:"to"`
}

func (s SMTP) Enabled() bool {
	return s.From != "" && s.Pass != "" && s.To != ""
}

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// HistoryPath is the JSON history file. Ignored when DatabaseURL is set.
	HistoryPath string `yaml:"history_path"`
	DatabaseURL string `yaml:"database_url"`

	ServePort int  `yaml:"serve_port"`
	SMTP      SMTP `yaml:"smtp"`
}

func Default() Config {
	return Config{
		Port:        22,
		HistoryPath: "transfer_history.json",
		ServePort:   8080,
		SMTP: SMTP{
			Host: "smtp.gmail.com",
			Port: 587,
		},
	}
}

// DefaultPath returns ~/.sftpgrab.yaml, or the bare file name when the home
// directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sftpgrab.yaml"
	}
	return filepath.Join(home, ".sftpgrab.yaml")
}

// Load reads the config file at path, falling back to DefaultPath when path
// is empty. A missing default file is fine; a missing explicit file is an
// error. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// no config file, run on defaults
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SFTPGRAB_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("SFTPGRAB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("SFTPGRAB_USER"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("SFTPGRAB_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("SFTPGRAB_HISTORY"); v != "" {
		cfg.HistoryPath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.SMTP.From = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.SMTP.Pass = v
	}
	if v := os.Getenv("SMTP_TO"); v != "" {
		cfg.SMTP.To = v
	}
}

// Params snapshots the connection parameters for one attempt.
func (c Config) Params() models.ConnectionParams {
	return models.ConnectionParams{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
	}
}
