// Package config provides YAML-based configuration loading for Hangar.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the top-level Hangar configuration, loaded from hangar.yaml.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	API         APIConfig         `yaml:"api"`
	Log         LogConfig         `yaml:"log"`
	Settings    Settings          `yaml:"settings"`
	Ranks       []RankConfig      `yaml:"ranks"`
	Notify      NotifyConfig      `yaml:"notify"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// DatabaseConfig holds connection settings for the backing SQL store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql, postgres, sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"` // sqlite only
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Port int `yaml:"port"`
}

// LogConfig configures structured logging. An empty Dir logs to stderr.
type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// RankConfig defines one rank tier seeded into the database.
type RankConfig struct {
	Name       string `yaml:"name"`
	Hours      int    `yaml:"hours"`
	AutoAccept bool   `yaml:"auto_accept"`
}

// NotifyConfig configures the notification channels. Channels without
// credentials are disabled.
type NotifyConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	NATS    NATSConfig    `yaml:"nats"`
}

// SlackConfig holds the Slack bot credentials and admin channel.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds the Discord bot credentials and admin channel.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// NATSConfig holds the event bus connection.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// MaintenanceConfig schedules periodic stats recalculation.
type MaintenanceConfig struct {
	Schedule string `yaml:"schedule"` // 5-field cron expression; "off" disables
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	switch c.Database.Driver {
	case "mysql":
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
	case "postgres":
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
	case "sqlite":
		if c.Database.Path == "" {
			c.Database.Path = "hangar.db"
		}
	}
	if c.Database.Name == "" {
		c.Database.Name = "hangar"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Settings.Pireps.DuplicateCheckTime == 0 {
		c.Settings.Pireps.DuplicateCheckTime = DefaultDuplicateCheckTime
	}
	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = 10 * time.Second
	}
	if c.Notify.NATS.URL != "" && c.Notify.NATS.Subject == "" {
		c.Notify.NATS.Subject = "hangar.pireps"
	}
	if c.Maintenance.Schedule == "" {
		c.Maintenance.Schedule = "0 3 * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "mysql", "postgres":
		if c.Database.User == "" {
			errs = append(errs, "database.user is required for "+c.Database.Driver)
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of mysql, postgres, sqlite", c.Database.Driver))
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Sprintf("api.port %d is out of range", c.API.Port))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Settings.Pireps.DuplicateCheckTime < 0 {
		errs = append(errs, "settings.pireps.duplicate_check_time must not be negative")
	}
	seen := make(map[string]bool)
	for i, r := range c.Ranks {
		if r.Name == "" {
			errs = append(errs, fmt.Sprintf("ranks[%d].name is required", i))
		}
		if r.Hours < 0 {
			errs = append(errs, fmt.Sprintf("ranks[%d].hours must not be negative", i))
		}
		if seen[r.Name] {
			errs = append(errs, fmt.Sprintf("ranks[%d].name %q is duplicated", i, r.Name))
		}
		seen[r.Name] = true
	}
	if c.Notify.Slack.BotToken != "" && c.Notify.Slack.ChannelID == "" {
		errs = append(errs, "notify.slack.channel_id is required when bot_token is set")
	}
	if c.Notify.Discord.BotToken != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, "notify.discord.channel_id is required when bot_token is set")
	}
	if c.Maintenance.Schedule != "off" {
		if _, err := CronParser.Parse(c.Maintenance.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("maintenance.schedule %q: %v", c.Maintenance.Schedule, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
