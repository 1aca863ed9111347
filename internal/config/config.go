package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	UpstreamURL string `env:"UPSTREAM_URL,required"`

	StoreDriver string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string        `env:"DATABASE_URL"`
	DBTimeout   time.Duration `env:"DB_TIMEOUT" envDefault:"3s"`
	DBMaxConns  int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMigrate   bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	RedisURL    string        `env:"REDIS_URL"`
	RedisPrefix string        `env:"REDIS_PREFIX" envDefault:"sniply:"`

	AdminAPIPrefix   string   `env:"ADMIN_API_PREFIX" envDefault:"/_sniply"`
	AdminPathPrefix  string   `env:"ADMIN_PATH_PREFIX" envDefault:"/wp-admin"`
	AdminTokenHashes []string `env:"ADMIN_TOKEN_HASHES" envSeparator:","`

	AdminRateLimit  int           `env:"ADMIN_RATE_LIMIT" envDefault:"60"`
	AdminRateWindow time.Duration `env:"ADMIN_RATE_WINDOW" envDefault:"1m"`

	SafeMode                    bool   `env:"SAFE_MODE"`
	SafeModeParam               string `env:"SAFE_MODE_PARAM" envDefault:"sniply-safe-mode"`
	SafeModeSuppressesInjection bool   `env:"SAFE_MODE_SUPPRESS_HEADER_FOOTER" envDefault:"true"`

	Debug     bool   `env:"SNIPPETS_DEBUG"`
	PHPBinary string `env:"PHP_BINARY" envDefault:"php"`
	TempDir   string `env:"SNIPPETS_TEMP_DIR"`

	OTelEnabled bool `env:"OTEL_ENABLED" envDefault:"true"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	c.AdminAPIPrefix = "/" + strings.Trim(strings.TrimSpace(c.AdminAPIPrefix), "/")
	if c.AdminAPIPrefix == "/" {
		return fmt.Errorf("ADMIN_API_PREFIX must not be the site root")
	}

	hashes := c.AdminTokenHashes[:0]
	for _, h := range c.AdminTokenHashes {
		if h = strings.TrimSpace(h); h != "" {
			hashes = append(hashes, h)
		}
	}
	c.AdminTokenHashes = hashes

	if strings.TrimSpace(c.SafeModeParam) == "" {
		c.SafeModeParam = "sniply-safe-mode"
	}
	return nil
}
