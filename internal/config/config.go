// Package config loads server configuration from .env, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds all configuration of the server.
type Config struct {
	Addr        string
	GRPCAddr    string // empty disables the gRPC health endpoint
	DatabaseURL string
	RedisURL    string // empty selects the Postgres limiter backend

	AdminSecret    string // empty disables the admin surface
	AllowedOrigins []string
	PublicBaseURL  string
	HashAlgorithm  string

	StoreTimeout time.Duration
	KeysPerHour  int

	Env     string
	Migrate bool
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads .env if present, then the environment, then flags from args.
// Later sources override earlier ones; variables already set in the environment win over .env.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(args, os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}
	def := Config{
		Addr:           e.str("ADDR", ":3001"),
		GRPCAddr:       e.str("GRPC_ADDR", ""),
		DatabaseURL:    e.str("DATABASE_URL", ""),
		RedisURL:       e.str("REDIS_URL", ""),
		AdminSecret:    e.str("ADMIN_SECRET", ""),
		AllowedOrigins: splitList(e.str("ALLOWED_ORIGINS", "*")),
		PublicBaseURL:  e.str("PUBLIC_BASE_URL", "https://neuralpress.ai"),
		HashAlgorithm:  e.str("HASH_ALGORITHM", "sha256"),
		StoreTimeout:   e.duration("STORE_TIMEOUT", 5*time.Second),
		KeysPerHour:    e.int("KEYS_PER_HOUR", 5),
		Env:            e.str("ENV", "production"),
		Migrate:        e.bool("MIGRATE", true),
	}
	if e.err != nil {
		return nil, e.err
	}

	cfg := def
	fs := pflag.NewFlagSet("neuralpress", pflag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", def.Addr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", def.GRPCAddr, "gRPC health listen address (empty = off)")
	fs.StringVar(&cfg.DatabaseURL, "dsn", def.DatabaseURL, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisURL, "redis-url", def.RedisURL, "Redis URL for the issuance limiter")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", def.AllowedOrigins, "CORS allowed origins")
	fs.StringVar(&cfg.PublicBaseURL, "public-base-url", def.PublicBaseURL, "base of canonical post URLs")
	fs.StringVar(&cfg.HashAlgorithm, "hash", def.HashAlgorithm, "key digest algorithm: sha256, sha3-256, blake3")
	fs.DurationVar(&cfg.StoreTimeout, "store-timeout", def.StoreTimeout, "deadline of a single store call")
	fs.IntVar(&cfg.KeysPerHour, "keys-per-hour", def.KeysPerHour, "key issuances allowed per client IP per hour")
	fs.StringVar(&cfg.Env, "env", def.Env, "production or development")
	fs.BoolVar(&cfg.Migrate, "migrate", def.Migrate, "apply database migrations on start")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("DATABASE_URL is required")
	case c.StoreTimeout <= 0:
		return errors.New("STORE_TIMEOUT must be positive")
	case c.KeysPerHour <= 0:
		return errors.New("KEYS_PER_HOUR must be positive")
	case c.Env != "production" && c.Env != "development":
		return fmt.Errorf("ENV must be production or development, got %q", c.Env)
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	return nil
}

// env reads typed variables and keeps the first parse error.
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) int(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
	return d
}

func (e *env) bool(key string, def bool) bool {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
