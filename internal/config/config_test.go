// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package config

import (
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantMsg: "server.port",
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantMsg: "database.path",
		},
		{
			name:    "bcrypt cost too low",
			mutate:  func(c *Config) { c.Security.BcryptCost = 4 },
			wantMsg: "bcrypt_cost",
		},
		{
			name:    "non-positive token ttl",
			mutate:  func(c *Config) { c.Security.TokenTTL = 0 },
			wantMsg: "token_ttl",
		},
		{
			name: "production requires jwt secret",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.CORSOrigins = []string{"https://example.com"}
				c.Security.JWTSecret = "short"
			},
			wantMsg: "jwt_secret",
		},
		{
			name: "production rejects wildcard cors",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.JWTSecret = strings.Repeat("s", 32)
			},
			wantMsg: "cors_origins",
		},
		{
			name:    "non-positive catalog timeout",
			mutate:  func(c *Config) { c.Catalog.Timeout = 0 },
			wantMsg: "catalog.timeout",
		},
		{
			name:    "default page size above max",
			mutate:  func(c *Config) { c.API.DefaultPageSize = 500 },
			wantMsg: "default_page_size",
		},
		{
			name:    "invalid engine config",
			mutate:  func(c *Config) { c.Recommend.Engine.DefaultLimit = 0 },
			wantMsg: "recommend.engine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"DUCKDB_PATH", "database.path"},
		{"SERVER_HOST", "server.host"},
		{"CATALOG_CACHE_TTL", "catalog.cache_ttl"},
		{"RECOMMEND_MIN_LIBRARY_BOOKS", "recommend.min_library_books"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Security.BcryptCost != 12 {
		t.Errorf("Security.BcryptCost = %d, want 12", cfg.Security.BcryptCost)
	}
	if cfg.Recommend.Engine.DefaultLimit != 12 {
		t.Errorf("Recommend.Engine.DefaultLimit = %d, want 12", cfg.Recommend.Engine.DefaultLimit)
	}
	if cfg.Catalog.MaxResults != 20 {
		t.Errorf("Catalog.MaxResults = %d, want 20", cfg.Catalog.MaxResults)
	}
}
