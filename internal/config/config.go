// Package config loads studyquest settings from defaults, an optional config
// file, a .env file and STUDYQUEST_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "STUDYQUEST"

type Config struct {
	User   string `mapstructure:"user"`
	Store  Store  `mapstructure:"store"`
	Auth   Auth   `mapstructure:"auth"`
	Oracle Oracle `mapstructure:"oracle"`
	Log    Log    `mapstructure:"log"`
}

// Store selects and configures the remote quest table adapter.
type Store struct {
	Driver      string        `mapstructure:"driver"` // sqlite | postgres | rest
	SQLitePath  string        `mapstructure:"sqlite_path"`
	PostgresURL string        `mapstructure:"postgres_url"`
	RESTURL     string        `mapstructure:"rest_url"`
	AnonKey     string        `mapstructure:"anon_key"`
	Table       string        `mapstructure:"table"`
	OwnerColumn string        `mapstructure:"owner_column"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Auth struct {
	Template string `mapstructure:"template"`
	Token    string `mapstructure:"token"`
}

// Oracle configures the chat provider. Empty BaseURL and Model select the
// provider's own defaults.
type Oracle struct {
	Provider    string        `mapstructure:"provider"` // groq | anthropic
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "")
	v.SetDefault("store.table", "quests")
	v.SetDefault("store.owner_column", "clerk_user_id")
	v.SetDefault("store.timeout", 15*time.Second)
	v.SetDefault("auth.template", "supabase")
	v.SetDefault("auth.token", "")
	v.SetDefault("oracle.provider", "groq")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("oracle.model", "")
	v.SetDefault("oracle.temperature", 0.7)
	v.SetDefault("oracle.max_tokens", 1024)
	v.SetDefault("oracle.timeout", 60*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// Load reads configuration. path may be empty; a missing .env is ignored.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return load(path)
}

func load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Oracle.Provider = strings.ToLower(strings.TrimSpace(cfg.Oracle.Provider))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
	case "postgres":
		if c.Store.PostgresURL == "" {
			return errors.New("store.postgres_url is required for the postgres driver")
		}
	case "rest":
		if c.Store.RESTURL == "" {
			return errors.New("store.rest_url is required for the rest driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite|postgres|rest)", c.Store.Driver)
	}
	switch c.Oracle.Provider {
	case "groq", "anthropic":
	default:
		return fmt.Errorf("unknown oracle provider %q (want groq|anthropic)", c.Oracle.Provider)
	}
	return nil
}
