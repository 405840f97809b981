// Package config loads the matchday configuration from YAML, with
// environment-variable expansion so secrets stay out of the file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matchday-tools/apiclient/pkg/jobstatus"
	"github.com/matchday-tools/apiclient/pkg/logging"
	"github.com/matchday-tools/apiclient/pkg/quota"
	"github.com/matchday-tools/apiclient/pkg/store"
	"github.com/matchday-tools/apiclient/pkg/warmer"
)

// Config holds all matchday configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Quota   QuotaConfig   `yaml:"quota"`
	Jobs    JobsConfig    `yaml:"jobs"`
	Warming WarmingConfig `yaml:"warming"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig identifies the upstream provider.
type APIConfig struct {
	Key     string `yaml:"key"`
	BaseURL string `yaml:"base_url"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled     bool            `yaml:"enabled"`
	Backend     string          `yaml:"backend"`
	LocalDir    string          `yaml:"local_dir"`
	Bucket      string          `yaml:"bucket"`
	RedisAddr   string          `yaml:"redis_addr"`
	RedisPrefix string          `yaml:"redis_prefix"`
	TTLDays     map[string]*int `yaml:"ttl_days"`
}

// StoreConfig converts the cache section into a backend factory config.
func (c CacheConfig) StoreConfig() store.Config {
	return store.Config{
		Backend:     store.Backend(c.Backend),
		LocalDir:    c.LocalDir,
		Bucket:      c.Bucket,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
	}
}

// QuotaConfig controls the discretionary-work scheduler.
type QuotaConfig struct {
	Threshold    int    `yaml:"threshold"`
	CutoffHour   int    `yaml:"cutoff_hour"`
	CutoffMinute int    `yaml:"cutoff_minute"`
	Timezone     string `yaml:"timezone"`
}

// JobsConfig controls the job-status table.
type JobsConfig struct {
	TablePath     string `yaml:"table_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// WarmingConfig lists the cache-warming targets.
type WarmingConfig struct {
	Enabled bool          `yaml:"enabled"`
	Season  int           `yaml:"season"`
	Teams   []warmer.Team `yaml:"teams"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  logging.LogLevel `yaml:"level"`
	Pretty bool             `yaml:"pretty"`
}

// Default returns a Config with sensible defaults: a local cache under
// ./cache, default TTLs, and the standard quota policy.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Enabled:  true,
			Backend:  string(store.BackendLocal),
			LocalDir: "cache",
		},
		Quota: QuotaConfig{
			Threshold:    quota.DefaultThreshold,
			CutoffHour:   quota.DefaultCutoffHour,
			CutoffMinute: quota.DefaultCutoffMinute,
			Timezone:     quota.DefaultTimezone,
		},
		Jobs: JobsConfig{
			TablePath:     jobstatus.TablePath,
			RetentionDays: jobstatus.RetentionDays,
		},
		Log: LogConfig{
			Level: logging.LevelInfo,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the YAML schema cannot express.
func (c *Config) Validate() error {
	switch store.Backend(c.Cache.Backend) {
	case store.BackendLocal, store.BackendS3, store.BackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if store.Backend(c.Cache.Backend) == store.BackendS3 && c.Cache.Bucket == "" {
		return fmt.Errorf("cache backend s3 requires a bucket")
	}
	if store.Backend(c.Cache.Backend) == store.BackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires redis_addr")
	}
	if c.Quota.Threshold < 0 {
		return fmt.Errorf("quota threshold must not be negative")
	}
	if c.Quota.CutoffHour < 0 || c.Quota.CutoffHour > 23 {
		return fmt.Errorf("quota cutoff_hour out of range")
	}
	return nil
}
