package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Feed struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"feed"`
	Schedule struct {
		MissionsCron string `yaml:"missions_cron"`
		DeepDiveCron string `yaml:"deepdive_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("FEED_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("CRON_MISSIONS"); v != "" {
		cfg.Schedule.MissionsCron = v
	}
	if v := os.Getenv("CRON_DEEPDIVE"); v != "" {
		cfg.Schedule.DeepDiveCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Feed.BaseURL == "" {
		cfg.Feed.BaseURL = "https://doublexp.net"
	}
	if cfg.Schedule.MissionsCron == "" {
		// Daily, just past UTC midnight when the mission snapshot rolls over.
		cfg.Schedule.MissionsCron = "5 0 0 * * *"
	}
	if cfg.Schedule.DeepDiveCron == "" {
		// Daily tick at the rotation hour; the handler gates on weekday.
		cfg.Schedule.DeepDiveCron = "5 0 11 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required")
	}
	return nil
}
