package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "ANYBOT_"

type Config struct {
	LogLevel  string         `koanf:"log_level"`
	LogFormat string         `koanf:"log_format"`
	Telegram  TelegramConfig `koanf:"telegram"`
	VK        VKConfig       `koanf:"vk"`
	Health    HealthConfig   `koanf:"health"`
	Photos    PhotosConfig   `koanf:"photos"`
}

type TelegramConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
}

type VKConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
	GroupID int    `koanf:"group_id"`
}

type HealthConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
}

type PhotosConfig struct {
	TimeoutSeconds int `koanf:"timeout_seconds"`
	MaxBytes       int `koanf:"max_bytes"`
}

func Default() Config {
	return Config{
		LogLevel:  "INFO",
		LogFormat: "text",
		Telegram: TelegramConfig{
			Enabled: false,
		},
		VK: VKConfig{
			Enabled: false,
		},
		Health: HealthConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    18080,
		},
		Photos: PhotosConfig{
			TimeoutSeconds: 20,
			MaxBytes:       10 << 20,
		},
	}
}

// Load reads the YAML file at path (a missing file means defaults) and then
// applies ANYBOT_* environment overrides. A double underscore separates
// nesting levels: ANYBOT_TELEGRAM__TOKEN sets telegram.token.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Normalize()
	return cfg, nil
}

func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func (c *Config) Normalize() {
	defaults := Default()
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.VK.Token = strings.TrimSpace(c.VK.Token)
	if c.Health.Host == "" {
		c.Health.Host = defaults.Health.Host
	}
	if c.Health.Port <= 0 {
		c.Health.Port = defaults.Health.Port
	}
	if c.Photos.TimeoutSeconds <= 0 {
		c.Photos.TimeoutSeconds = defaults.Photos.TimeoutSeconds
	}
	if c.Photos.MaxBytes <= 0 {
		c.Photos.MaxBytes = defaults.Photos.MaxBytes
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required when telegram.enabled=true"))
	}
	if c.VK.Enabled && c.VK.Token == "" {
		errs = append(errs, errors.New("vk.token is required when vk.enabled=true"))
	}
	if c.VK.GroupID < 0 {
		errs = append(errs, errors.New("vk.group_id must be a positive community id"))
	}
	if c.Health.Port > 65535 {
		errs = append(errs, fmt.Errorf("health.port %d out of range", c.Health.Port))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q must be text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}
