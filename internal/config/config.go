// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

// Package config defines the BookBrain configuration and its layered loader.
//
// Configuration is resolved in three layers with later layers winning:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/bookbrain/bookbrain/internal/recommend"
)

// Config is the root configuration for the BookBrain server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// Timeout bounds request read and write.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is "development" or "production". Production tightens
	// validation and cookie policy.
	Environment string `koanf:"environment"`
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" runs fully in memory.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory limit, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads caps DuckDB worker threads; 0 uses all CPUs.
	Threads int `koanf:"threads"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// JWTSecret signs access tokens. Required in production.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the access-token lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// BcryptCost is the password hashing cost factor.
	BcryptCost int `koanf:"bcrypt_cost"`

	// CookieSecure marks the auth cookie Secure. Forced on in production.
	CookieSecure bool `koanf:"cookie_secure"`

	// RateLimitReqs is the per-IP request budget per window.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// LoginRatePerMinute caps login attempts per IP per minute.
	LoginRatePerMinute int `koanf:"login_rate_per_minute"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// CatalogConfig holds external book catalog settings.
type CatalogConfig struct {
	// GoogleBooksURL is the Google Books volumes endpoint.
	GoogleBooksURL string `koanf:"google_books_url"`

	// GoogleBooksAPIKey is optional; unauthenticated requests work at a
	// lower quota.
	GoogleBooksAPIKey string `koanf:"google_books_api_key"`

	// OpenLibraryURL is the Open Library search endpoint.
	OpenLibraryURL string `koanf:"open_library_url"`

	// Timeout bounds a single upstream catalog request.
	Timeout time.Duration `koanf:"timeout"`

	// CachePath is the Badger directory for the search cache; empty runs
	// the cache in memory.
	CachePath string `koanf:"cache_path"`

	// CacheTTL is how long cached search responses stay valid.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// MaxResults caps results per source per query.
	MaxResults int `koanf:"max_results"`
}

// RecommendConfig wraps the scoring engine configuration with the candidate
// assembly knobs used by the recommendations endpoint.
type RecommendConfig struct {
	// Engine holds the scoring weights and thresholds.
	Engine recommend.Config `koanf:"engine"`

	// CandidateSubjects is how many favorite categories drive subject queries.
	CandidateSubjects int `koanf:"candidate_subjects"`

	// CandidateAuthors is how many favorite authors drive author queries.
	CandidateAuthors int `koanf:"candidate_authors"`

	// SubjectQueryLimit caps results per subject query per source.
	SubjectQueryLimit int `koanf:"subject_query_limit"`

	// AuthorQueryLimit caps results per author query per source.
	AuthorQueryLimit int `koanf:"author_query_limit"`

	// MinLibraryBooks is the smallest library that gets recommendations.
	MinLibraryBooks int `koanf:"min_library_books"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	// DefaultPageSize is the page size when the client sends none.
	DefaultPageSize int `koanf:"default_page_size"`

	// MaxPageSize caps the client-requested page size.
	MaxPageSize int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost must be in 10-31, got %d", c.Security.BcryptCost)
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("security.token_ttl must be positive")
	}
	if c.Server.IsProduction() {
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("security.jwt_secret must be at least 32 characters in production")
		}
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("security.cors_origins must not contain \"*\" in production")
			}
		}
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive")
	}
	if c.Catalog.MaxResults <= 0 {
		return fmt.Errorf("catalog.max_results must be positive")
	}
	if c.Recommend.MinLibraryBooks < 1 {
		return fmt.Errorf("recommend.min_library_books must be at least 1")
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("api.default_page_size must be in 1-%d, got %d",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if err := c.Recommend.Engine.Validate(); err != nil {
		return fmt.Errorf("recommend.engine: %w", err)
	}
	return nil
}
