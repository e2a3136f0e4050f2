package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

type Config struct {
	Backend   string
	LocalPath string

	DatabaseURL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	HTTPAddr string
	LogLevel string
}

func Defaults() Config {
	return Config{
		Backend:         BackendLocal,
		LocalPath:       "notes.db",
		MaxOpenConns:    20,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		HTTPAddr:        ":8080",
		LogLevel:        "info",
	}
}

// Load reads the configuration from the environment. When NOTES_CONFIG names
// a TOML file it is applied first; use LoadFile to see its errors.
func Load() Config {
	if path := os.Getenv("NOTES_CONFIG"); path != "" {
		if cfg, err := LoadFile(path); err == nil {
			return cfg
		}
	}
	return applyEnv(Defaults())
}

// LoadFile decodes a TOML file over the defaults, then applies environment
// overrides on top.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg, err := fc.merge(Defaults())
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

func (c Config) Remote() bool {
	return strings.EqualFold(strings.TrimSpace(c.Backend), BackendRemote)
}

// Local reports whether the local backend is selected. A blank backend means local.
func (c Config) Local() bool {
	b := strings.TrimSpace(c.Backend)
	return b == "" || strings.EqualFold(b, BackendLocal)
}

func applyEnv(c Config) Config {
	return Config{
		Backend:         getenv("NOTES_BACKEND", c.Backend),
		LocalPath:       getenv("NOTES_LOCAL_PATH", c.LocalPath),
		DatabaseURL:     getenv("DATABASE_URL", c.DatabaseURL),
		MaxOpenConns:    getenvInt("DB_MAX_OPEN", c.MaxOpenConns),
		MaxIdleConns:    getenvInt("DB_MAX_IDLE", c.MaxIdleConns),
		ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", c.ConnMaxLifetime),
		ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", c.ConnMaxIdleTime),
		HTTPAddr:        getenv("HTTP_ADDR", c.HTTPAddr),
		LogLevel:        getenv("LOG_LEVEL", c.LogLevel),
	}
}

type fileConfig struct {
	Backend  string `toml:"backend"`
	LogLevel string `toml:"log_level"`
	Local    struct {
		Path string `toml:"path"`
	} `toml:"local"`
	Database struct {
		URL             string `toml:"url"`
		MaxOpen         int    `toml:"max_open"`
		MaxIdle         int    `toml:"max_idle"`
		ConnMaxLifetime string `toml:"conn_max_lifetime"`
		ConnMaxIdleTime string `toml:"conn_max_idle_time"`
	} `toml:"database"`
	HTTP struct {
		Addr string `toml:"addr"`
	} `toml:"http"`
}

func (fc fileConfig) merge(c Config) (Config, error) {
	if v := strings.TrimSpace(fc.Backend); v != "" {
		c.Backend = v
	}
	if v := strings.TrimSpace(fc.LogLevel); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(fc.Local.Path); v != "" {
		c.LocalPath = v
	}
	if v := strings.TrimSpace(fc.Database.URL); v != "" {
		c.DatabaseURL = v
	}
	if fc.Database.MaxOpen > 0 {
		c.MaxOpenConns = fc.Database.MaxOpen
	}
	if fc.Database.MaxIdle > 0 {
		c.MaxIdleConns = fc.Database.MaxIdle
	}
	if v := strings.TrimSpace(fc.Database.ConnMaxLifetime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("database.conn_max_lifetime: %w", err)
		}
		c.ConnMaxLifetime = d
	}
	if v := strings.TrimSpace(fc.Database.ConnMaxIdleTime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("database.conn_max_idle_time: %w", err)
		}
		c.ConnMaxIdleTime = d
	}
	if v := strings.TrimSpace(fc.HTTP.Addr); v != "" {
		c.HTTPAddr = v
	}
	return c, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
