// Package config provides the YAML-backed application configuration.
// Secrets (bot token, Airtable key, Google credential path) are never
// written to the file; they come from the environment and override
// whatever the file holds.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ICSSource describes one ICS subscription consumed by the read-only
// ICS calendar provider.
type ICSSource struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url"`
	// ID identifies the source in logs; auto-generated when empty.
	ID string `yaml:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name"`
}

// AirtableConfig identifies the expense ledger table. BaseID, TableID and
// ViewID are also used to build the user-facing record URL.
type AirtableConfig struct {
	APIKey  string `yaml:"-"` // env only: AIRTABLE_KEY
	BaseID  string `yaml:"base_id"`
	Table   string `yaml:"table"`
	TableID string `yaml:"table_id"`
	ViewID  string `yaml:"view_id"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone used for all timezone-naive parsing and
	// all user-facing time formatting (e.g. "Asia/Singapore").
	Timezone string `yaml:"timezone"`

	// Provider selects the calendar backend: "google" or "ics".
	Provider string `yaml:"provider"`

	// CalendarID is the Google calendar to read and write.
	CalendarID string `yaml:"calendar_id"`

	// GoogleCredentials is the path to the service-account JSON key.
	GoogleCredentials string `yaml:"google_credentials"`

	// ICS lists subscription sources for the "ics" provider.
	ICS []ICSSource `yaml:"ics"`

	// DigestCron is the cron spec for the daily digest, evaluated in
	// Timezone.
	DigestCron string `yaml:"digest_cron"`

	Airtable AirtableConfig `yaml:"airtable"`

	// KnownUsers seeds the digest recipient registry with chat ids that
	// should receive the daily summary even before they message the bot.
	KnownUsers []int64 `yaml:"known_users"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// TelegramToken comes from the environment only (TELEGRAM_TOKEN).
	TelegramToken string `yaml:"-"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:   "Asia/Singapore",
		Provider:   "google",
		CalendarID: "primary",
		DigestCron: "30 22 * * *",
		Airtable: AirtableConfig{
			Table: "Table",
		},
		KnownUsers: []int64{},
		LogLevel:   "info",
	}
}

// Normalize fills in missing/zero values so partially-filled configs
// still behave correctly. ICS sources without an id get one assigned.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "Asia/Singapore"
	}
	switch c.Provider {
	case "google", "ics":
	default:
		c.Provider = "google"
	}
	if c.CalendarID == "" {
		c.CalendarID = "primary"
	}
	if c.DigestCron == "" {
		c.DigestCron = "30 22 * * *"
	}
	if c.Airtable.Table == "" {
		c.Airtable.Table = "Table"
	}
	if c.KnownUsers == nil {
		c.KnownUsers = []int64{}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			c.ICS[i].ID = uuid.NewString()
		}
	}
}

// ApplyEnv overlays secrets and identifiers from the environment. The
// variable names match the original deployment's .env file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("AIRTABLE_KEY"); v != "" {
		c.Airtable.APIKey = v
	}
	if v := os.Getenv("AIRTABLE_BASE"); v != "" {
		c.Airtable.BaseID = v
	}
	if v := os.Getenv("AIRTABLE_TABLE"); v != "" {
		c.Airtable.TableID = v
	}
	if v := os.Getenv("AIRTABLE_VIEW"); v != "" {
		c.Airtable.ViewID = v
	}
	if v := os.Getenv("CALENDAR_ID"); v != "" {
		c.CalendarID = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		c.GoogleCredentials = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600,
// parent directory created) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename, 0600).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".minder-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
