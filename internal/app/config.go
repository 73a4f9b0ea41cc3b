package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir      string `yaml:"data_dir"`
	Theme        string `yaml:"theme"` // "light"|"dark"; empty defers to the stored preference
	CountriesURL string `yaml:"countries_url"`
	// StorageQuota bounds the durable medium in bytes, in the spirit of the
	// browser localStorage budget.
	StorageQuota int64 `yaml:"storage_quota_bytes"`

	ReplyMinDelayMs   int `yaml:"reply_min_delay_ms"`
	ReplyMaxDelayMs   int `yaml:"reply_max_delay_ms"`
	CooldownReleaseMs int `yaml:"cooldown_release_ms"`

	OTPSendDelayMs   int `yaml:"otp_send_delay_ms"`
	OTPVerifyDelayMs int `yaml:"otp_verify_delay_ms"`
	OTPCountdownSec  int `yaml:"otp_countdown_seconds"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:           DefaultDataDir(),
		CountriesURL:      DefaultCountriesURL,
		StorageQuota:      5 << 20,
		ReplyMinDelayMs:   1200,
		ReplyMaxDelayMs:   2400,
		CooldownReleaseMs: 800,
		OTPSendDelayMs:    1000,
		OTPVerifyDelayMs:  1000,
		OTPCountdownSec:   5,
	}
}

func DefaultDataDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "cli-chat")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "cli-chat")
	}
	return filepath.Join(os.TempDir(), "cli-chat")
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "cli-chat", "config.yml")
}

// LoadConfig reads the YAML config (missing file is fine), then applies .env
// and environment overrides, then clamps everything to usable values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		case !errors.Is(err, os.ErrNotExist):
			return cfg, err
		}
	}

	_ = godotenv.Load()
	if v := os.Getenv("GCHAT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("GCHAT_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("GCHAT_COUNTRIES_URL"); v != "" {
		cfg.CountriesURL = v
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if cfg.CountriesURL == "" {
		cfg.CountriesURL = DefaultCountriesURL
	}
	if cfg.ReplyMinDelayMs <= 0 {
		cfg.ReplyMinDelayMs = 1200
	}
	if cfg.ReplyMaxDelayMs <= cfg.ReplyMinDelayMs {
		cfg.ReplyMaxDelayMs = cfg.ReplyMinDelayMs + 1200
	}
	if cfg.CooldownReleaseMs <= 0 {
		cfg.CooldownReleaseMs = 800
	}
	if cfg.OTPSendDelayMs <= 0 {
		cfg.OTPSendDelayMs = 1000
	}
	if cfg.OTPVerifyDelayMs <= 0 {
		cfg.OTPVerifyDelayMs = 1000
	}
	if cfg.OTPCountdownSec <= 0 {
		cfg.OTPCountdownSec = 5
	}
	return cfg, nil
}

func (c Config) ReplyConfig() ReplyConfig {
	return ReplyConfig{
		MinDelay:        time.Duration(c.ReplyMinDelayMs) * time.Millisecond,
		MaxDelay:        time.Duration(c.ReplyMaxDelayMs) * time.Millisecond,
		CooldownRelease: time.Duration(c.CooldownReleaseMs) * time.Millisecond,
	}
}

func (c Config) OTPConfig() OTPConfig {
	return OTPConfig{
		SendDelay:     time.Duration(c.OTPSendDelayMs) * time.Millisecond,
		VerifyDelay:   time.Duration(c.OTPVerifyDelayMs) * time.Millisecond,
		AutofillAfter: time.Duration(c.OTPCountdownSec) * time.Second,
	}
}
