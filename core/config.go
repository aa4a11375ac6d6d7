package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

type ServerConfig struct {
	Addr            string        `koanf:"addr" mapstructure:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

type WebhookConfig struct {
	Secret string `koanf:"secret" mapstructure:"secret"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
}

type TelegramConfig struct {
	BotToken    string        `koanf:"bot_token" mapstructure:"bot_token"`
	ChatID      int64         `koanf:"chat_id" mapstructure:"chat_id"`
	SendTimeout time.Duration `koanf:"send_timeout" mapstructure:"send_timeout"`
}

type DashboardConfig struct {
	Username string `koanf:"username" mapstructure:"username"`
	Password string `koanf:"password" mapstructure:"password"`
}

type DirectoryConfig struct {
	BaseURL        string        `koanf:"base_url" mapstructure:"base_url"`
	APIKey         string        `koanf:"api_key" mapstructure:"api_key"`
	RequestTimeout time.Duration `koanf:"request_timeout" mapstructure:"request_timeout"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Server      ServerConfig    `koanf:"server" mapstructure:"server"`
	Webhook     WebhookConfig   `koanf:"webhook" mapstructure:"webhook"`
	Storage     StorageConfig   `koanf:"storage" mapstructure:"storage"`
	Telegram    TelegramConfig  `koanf:"telegram" mapstructure:"telegram"`
	Dashboard   DashboardConfig `koanf:"dashboard" mapstructure:"dashboard"`
	Directory   DirectoryConfig `koanf:"directory" mapstructure:"directory"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "fleet-alerts",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file:fleet-alerts.db?_foreign_keys=on",
		},
		Telegram: TelegramConfig{
			SendTimeout: 10 * time.Second,
		},
		Directory: DirectoryConfig{
			RequestTimeout: 10 * time.Second,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("core: server.addr is required")
	}
	if strings.TrimSpace(c.Webhook.Secret) == "" {
		return fmt.Errorf("core: webhook.secret is required")
	}
	switch strings.TrimSpace(c.Storage.Driver) {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("core: storage.driver must be sqlite3 or postgres, got %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("core: storage.dsn is required")
	}
	return nil
}

// RawConfigLoader supplies layered key/value configuration before defaults
// and validation are applied.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type staticRawConfigLoader struct{}

func (staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	return map[string]any{}, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
