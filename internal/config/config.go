package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"horse.fit/textra/internal/language"
	"horse.fit/textra/internal/textra"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Username   string `envconfig:"TEXTRA_USERNAME"`
	APIKey     string `envconfig:"TEXTRA_API_KEY"`
	APISecret  string `envconfig:"TEXTRA_API_SECRET"`
	Mode       string `envconfig:"TEXTRA_MODE" default:"general"`
	SourceLang string `envconfig:"TEXTRA_SOURCE_LANG" default:""`
	TargetLang string `envconfig:"TEXTRA_TARGET_LANG" default:""`

	BaseURL           string        `envconfig:"TEXTRA_BASE_URL" default:"https://mt-auto-minhon-mlt.ucri.jgn-x.jp/api/mt"`
	ConnectTimeout    time.Duration `envconfig:"TEXTRA_CONNECT_TIMEOUT" default:"2m"`
	ReadTimeout       time.Duration `envconfig:"TEXTRA_READ_TIMEOUT" default:"10m"`
	Retries           int           `envconfig:"TEXTRA_RETRIES" default:"3"`
	RequestsPerSecond float64       `envconfig:"TEXTRA_REQUESTS_PER_SECOND" default:"0"`
	// SkipCombinationCheck sends requests for triples missing from the
	// built-in table, for endpoints newer than the table.
	SkipCombinationCheck bool `envconfig:"TEXTRA_SKIP_COMBINATION_CHECK" default:"false"`

	// DatabaseURL enables the translation cache when set.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"4"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := textra.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("TEXTRA_MODE: %w", err)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("TEXTRA_BASE_URL is required")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("TEXTRA_CONNECT_TIMEOUT must be > 0")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("TEXTRA_READ_TIMEOUT must be > 0")
	}
	if c.Retries < 0 {
		return fmt.Errorf("TEXTRA_RETRIES must be >= 0")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("TEXTRA_REQUESTS_PER_SECOND must be >= 0")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// RequireCredentials reports missing credentials for commands that call the API.
func (c *Config) RequireCredentials() error {
	var missing []string
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "TEXTRA_USERNAME")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "TEXTRA_API_KEY")
	}
	if strings.TrimSpace(c.APISecret) == "" {
		missing = append(missing, "TEXTRA_API_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	return nil
}

// CacheEnabled reports whether a translation cache database is configured.
func (c *Config) CacheEnabled() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}

// ClientConfig maps the HTTP settings onto a textra client config.
func (c *Config) ClientConfig() textra.Config {
	return textra.Config{
		BaseURL:              strings.TrimSpace(c.BaseURL),
		ConnectTimeout:       c.ConnectTimeout,
		ReadTimeout:          c.ReadTimeout,
		Retries:              c.Retries,
		RequestsPerSecond:    c.RequestsPerSecond,
		SkipCombinationCheck: c.SkipCombinationCheck,
	}
}

// Options builds translation options from the configured credentials,
// overriding mode and languages when the arguments are non-empty.
func (c *Config) Options(mode, sourceLang, targetLang string) (*textra.Options, error) {
	if strings.TrimSpace(mode) == "" {
		mode = c.Mode
	}
	if strings.TrimSpace(sourceLang) == "" {
		sourceLang = c.SourceLang
	}
	if strings.TrimSpace(targetLang) == "" {
		targetLang = c.TargetLang
	}
	return textra.Configure(
		strings.TrimSpace(c.Username),
		strings.TrimSpace(c.APIKey),
		strings.TrimSpace(c.APISecret),
		mode,
		language.FormatCode(sourceLang),
		language.FormatCode(targetLang),
	)
}
