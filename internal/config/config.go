package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	APIURL             string        `mapstructure:"CLINIC_API_URL"`
	APIToken           string        `mapstructure:"CLINIC_API_TOKEN"`
	Env                string        `mapstructure:"ENV"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	LogFile            string        `mapstructure:"LOG_FILE"`
	HTTPTimeout        time.Duration `mapstructure:"HTTP_TIMEOUT"`
	SandboxPort        string        `mapstructure:"SANDBOX_PORT"`
	SandboxDatabaseURL string        `mapstructure:"SANDBOX_DATABASE_URL"`
	SandboxJWTSecret   string        `mapstructure:"SANDBOX_JWT_SECRET"`
}

// Load reads configuration from the environment and an optional file.
// An empty path falls back to ".env" in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	v.SetDefault("CLINIC_API_URL", "http://localhost:8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_TIMEOUT", "0s")
	v.SetDefault("SANDBOX_PORT", "8000")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"CLINIC_API_URL", "CLINIC_API_TOKEN", "ENV", "LOG_LEVEL", "LOG_FILE",
		"HTTP_TIMEOUT", "SANDBOX_PORT", "SANDBOX_DATABASE_URL", "SANDBOX_JWT_SECRET",
	} {
		_ = v.BindEnv(key)
	}

	// A missing file is fine, everything has a default or comes from the environment.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks the values that would otherwise fail late, on the first request.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("CLINIC_API_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CLINIC_API_URL must be http or https, got %q", c.APIURL)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative, got %s", c.HTTPTimeout)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}
