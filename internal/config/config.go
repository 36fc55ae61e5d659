package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/PainMap/internal/utils"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Store       StoreConfig       `yaml:"store"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Frontend    FrontendConfig    `yaml:"frontend"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	Build       BuildInfo         `yaml:"-"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig selects where users and entries live.
type StoreConfig struct {
	Driver        string `yaml:"driver"` // memory | sqlite
	SQLitePath    string `yaml:"sqlite_path"`
	MigrationsDir string `yaml:"migrations_dir"`
}

// PreferencesConfig selects where the variant and dial choice live.
type PreferencesConfig struct {
	Driver        string `yaml:"driver"` // store | redis
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTL           string `yaml:"ttl"`
}

type FrontendConfig struct {
	StaticDir string `yaml:"static_dir"`
	DevURL    string `yaml:"dev_url"`
}

type SessionsConfig struct {
	IdleTimeout string `yaml:"idle_timeout"`
	SweepEvery  string `yaml:"sweep_every"`
}

type BuildInfo struct {
	Commit    string
	BuildTime string
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	PrefsStore  = "store"
	PrefsRedis  = "redis"
)

func Default() *Config {
	return &Config{
		Server:      ServerConfig{Addr: ":8080"},
		Logging:     LoggingConfig{Level: "info", Format: "json"},
		Store:       StoreConfig{Driver: StoreMemory, SQLitePath: "data/painmap.db"},
		Preferences: PreferencesConfig{Driver: PrefsStore, RedisAddr: "localhost:6379", TTL: "8760h"},
		Sessions:    SessionsConfig{IdleTimeout: "2h", SweepEvery: "5m"},
	}
}

// Load reads path (when non-empty) over the defaults, then applies
// PAINMAP_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Addr = utils.SafeEnv("PAINMAP_ADDR", c.Server.Addr)
	c.Server.CORSOrigins = utils.EnvList("PAINMAP_CORS_ORIGINS", c.Server.CORSOrigins)
	c.Logging.Level = utils.SafeEnv("PAINMAP_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = utils.SafeEnv("PAINMAP_LOG_FORMAT", c.Logging.Format)
	c.Store.Driver = utils.SafeEnv("PAINMAP_STORE", c.Store.Driver)
	c.Store.SQLitePath = utils.SafeEnv("PAINMAP_SQLITE_PATH", c.Store.SQLitePath)
	c.Store.MigrationsDir = utils.SafeEnv("PAINMAP_MIGRATIONS_DIR", c.Store.MigrationsDir)
	c.Preferences.Driver = utils.SafeEnv("PAINMAP_PREFS", c.Preferences.Driver)
	c.Preferences.RedisAddr = utils.SafeEnv("PAINMAP_REDIS_ADDR", c.Preferences.RedisAddr)
	c.Preferences.RedisPassword = utils.SafeEnv("PAINMAP_REDIS_PASSWORD", c.Preferences.RedisPassword)
	c.Preferences.RedisDB = utils.EnvInt("PAINMAP_REDIS_DB", c.Preferences.RedisDB)
	c.Preferences.TTL = utils.SafeEnv("PAINMAP_PREFS_TTL", c.Preferences.TTL)
	c.Frontend.StaticDir = utils.SafeEnv("PAINMAP_STATIC_DIR", c.Frontend.StaticDir)
	c.Frontend.DevURL = utils.SafeEnv("PAINMAP_DEV_FRONTEND_URL", c.Frontend.DevURL)
	c.Sessions.IdleTimeout = utils.SafeEnv("PAINMAP_SESSION_IDLE", c.Sessions.IdleTimeout)
	c.Sessions.SweepEvery = utils.SafeEnv("PAINMAP_SESSION_SWEEP", c.Sessions.SweepEvery)
	c.Build.Commit = utils.SafeEnv("PAINMAP_COMMIT", c.Build.Commit)
	c.Build.BuildTime = utils.SafeEnv("PAINMAP_BUILD_TIME", c.Build.BuildTime)
}

func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Preferences.Driver = strings.ToLower(strings.TrimSpace(c.Preferences.Driver))
	var errs []error
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Preferences.Driver {
	case PrefsStore:
	case PrefsRedis:
		if strings.TrimSpace(c.Preferences.RedisAddr) == "" {
			errs = append(errs, errors.New("preferences.redis_addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown preferences driver %q", c.Preferences.Driver))
	}
	for _, d := range []struct{ name, raw string }{
		{"preferences.ttl", c.Preferences.TTL},
		{"sessions.idle_timeout", c.Sessions.IdleTimeout},
		{"sessions.sweep_every", c.Sessions.SweepEvery},
	} {
		if d.raw == "" {
			continue
		}
		if _, err := time.ParseDuration(d.raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
		}
	}
	return errors.Join(errs...)
}

func duration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (c *Config) PreferenceTTL() time.Duration { return duration(c.Preferences.TTL, 0) }

func (c *Config) SessionIdle() time.Duration { return duration(c.Sessions.IdleTimeout, 2*time.Hour) }

func (c *Config) SweepInterval() time.Duration { return duration(c.Sessions.SweepEvery, 5*time.Minute) }
