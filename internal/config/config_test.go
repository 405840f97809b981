package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matchday-tools/apiclient/pkg/store"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cache.Backend != string(store.BackendLocal) {
		t.Errorf("default backend = %q, want local", cfg.Cache.Backend)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache disabled by default")
	}
	if cfg.Quota.Threshold != 30 {
		t.Errorf("default quota threshold = %d, want 30", cfg.Quota.Threshold)
	}
	if cfg.Jobs.TablePath != "schedule/job_status.csv" {
		t.Errorf("default table path = %q", cfg.Jobs.TablePath)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_FOOTBALL_KEY", "key-abc-123")

	content := `
api:
  key: ${TEST_FOOTBALL_KEY}
cache:
  backend: s3
  bucket: matchday-cache
  ttl_days:
    fixtures: 10
    injuries: 0
quota:
  threshold: 20
warming:
  enabled: true
  season: 2026
  teams:
    - id: 40
      name: Liverpool
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.API.Key != "key-abc-123" {
		t.Errorf("env var not expanded: got %q", cfg.API.Key)
	}
	if cfg.Cache.Backend != "s3" || cfg.Cache.Bucket != "matchday-cache" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if ttl := cfg.Cache.TTLDays["fixtures"]; ttl == nil || *ttl != 10 {
		t.Errorf("fixtures ttl = %v, want 10", ttl)
	}
	if ttl := cfg.Cache.TTLDays["injuries"]; ttl == nil || *ttl != 0 {
		t.Errorf("injuries ttl = %v, want 0", ttl)
	}
	if cfg.Quota.Threshold != 20 {
		t.Errorf("quota threshold = %d, want 20", cfg.Quota.Threshold)
	}
	if len(cfg.Warming.Teams) != 1 || cfg.Warming.Teams[0].ID != 40 {
		t.Errorf("warming teams = %+v", cfg.Warming.Teams)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "gcs" }, true},
		{"s3 without bucket", func(c *Config) { c.Cache.Backend = "s3" }, true},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, true},
		{"negative threshold", func(c *Config) { c.Quota.Threshold = -1 }, true},
		{"cutoff hour out of range", func(c *Config) { c.Quota.CutoffHour = 24 }, true},
		{"redis with addr", func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.RedisAddr = "localhost:6379"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
