package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }, "storage.backend"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "  " }, "storage.path"},
		{"redis without addr", func(c *Config) {
			c.Storage.Backend = "redis"
			c.Storage.Redis.Addr = ""
		}, "storage.redis.addr: required"},
		{"redis addr unused elsewhere", func(c *Config) { c.Storage.Redis.Addr = "" }, ""},
		{"negative redis db", func(c *Config) { c.Storage.Redis.DB = -1 }, "storage.redis.db"},
		{"queue too small", func(c *Config) { c.Tracking.QueueSize = 0 }, "tracking.queue_size"},
		{"limit too large", func(c *Config) { c.Recommend.DefaultLimit = 501 }, "recommend.default_limit"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"disabled backend", func(c *Config) { c.Storage.Backend = "disabled" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	cfg := NewConfig()
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"logging.level", "logging.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}
