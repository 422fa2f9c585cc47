package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token      string `yaml:"token"`
	Mode       string `yaml:"mode"` // webhook | polling
	WebhookURL string `yaml:"webhook_url"`
	Port       int    `yaml:"port"`
	Workers    int    `yaml:"workers"` // update workers
	AdminID    int64  `yaml:"admin_id"`
	DevContact string `yaml:"dev_contact"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Port      int           `yaml:"port"`
	APIKey    string        `yaml:"api_key"` // exchanged for a session token
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KeysConfig struct {
	Length int `yaml:"length"` // activation key code length
}

type BroadcastConfig struct {
	Workers   int `yaml:"workers"`
	PerSecond int `yaml:"per_second"` // outbound send throttle
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Web       WebConfig       `yaml:"web"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Keys      KeysConfig      `yaml:"keys"`
	Broadcast BroadcastConfig `yaml:"broadcast"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "webhook"
	}
	if cfg.Bot.Port == 0 {
		cfg.Bot.Port = 8080
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Keys.Length <= 0 {
		cfg.Keys.Length = 12
	}
	if cfg.Broadcast.Workers <= 0 {
		cfg.Broadcast.Workers = 4
	}
	if cfg.Broadcast.PerSecond <= 0 {
		cfg.Broadcast.PerSecond = 25
	}
	if cfg.Web.TokenTTL <= 0 {
		cfg.Web.TokenTTL = 30 * time.Minute
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.AdminID <= 0 {
		return nil, errors.New("bot.admin_id is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Bot.Mode == "webhook" && cfg.Bot.WebhookURL == "" {
		return nil, errors.New("bot.webhook_url is required in webhook mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
