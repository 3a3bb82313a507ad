// Package config assembles the CLI's runtime configuration from, in
// increasing precedence order, built-in defaults, an optional .env file,
// environment variables, an optional HCL config file, and finally
// command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"
)

// Config is the full set of knobs the batched-parallel import engine and
// its ambient stack read.
type Config struct {
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	Username string `hcl:"username,optional"`
	Password string `hcl:"password,optional"`
	UseSSL   bool   `hcl:"use_ssl,optional"`

	BatchSize     int `hcl:"batch_size,optional"`
	WorkersNumber int `hcl:"workers_number,optional"`
	MaxAttempts   int `hcl:"max_attempts,optional"`

	Source string `hcl:"source,optional"`

	OIDCIssuer       string `hcl:"oidc_issuer,optional"`
	OIDCClientID     string `hcl:"oidc_client_id,optional"`
	OIDCClientSecret string `hcl:"oidc_client_secret,optional"`

	StatusAddr    string `hcl:"status_addr,optional"`
	PublishValkey string `hcl:"publish_valkey,optional"`
	Lock          bool   `hcl:"lock,optional"`
	LockAddr      string `hcl:"lock_addr,optional"`
}

// Defaults returns the built-in defaults, matching the CLI flag defaults.
func Defaults() Config {
	return Config{
		Host:          "127.0.0.1",
		Port:          7687,
		BatchSize:     1000,
		WorkersNumber: 32,
		MaxAttempts:   5,
		Source:        "-",
	}
}

// LoadDotEnv loads path into the process environment if it exists, without
// overriding variables already set. A missing file is not an error — .env
// is an optional convenience, not a requirement.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// FromEnv overlays MGIMPORT_* environment variables onto base, leaving
// unset variables untouched.
func FromEnv(base Config) Config {
	cfg := base
	cfg.Host = getEnv("MGIMPORT_HOST", cfg.Host)
	cfg.Port = getEnvInt("MGIMPORT_PORT", cfg.Port)
	cfg.Username = getEnv("MGIMPORT_USERNAME", cfg.Username)
	cfg.Password = getEnv("MGIMPORT_PASSWORD", cfg.Password)
	cfg.UseSSL = getEnvBool("MGIMPORT_USE_SSL", cfg.UseSSL)
	cfg.BatchSize = getEnvInt("MGIMPORT_BATCH_SIZE", cfg.BatchSize)
	cfg.WorkersNumber = getEnvInt("MGIMPORT_WORKERS_NUMBER", cfg.WorkersNumber)
	cfg.MaxAttempts = getEnvInt("MGIMPORT_MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.Source = getEnv("MGIMPORT_SOURCE", cfg.Source)
	cfg.OIDCIssuer = getEnv("MGIMPORT_OIDC_ISSUER", cfg.OIDCIssuer)
	cfg.OIDCClientID = getEnv("MGIMPORT_OIDC_CLIENT_ID", cfg.OIDCClientID)
	cfg.OIDCClientSecret = getEnv("MGIMPORT_OIDC_CLIENT_SECRET", cfg.OIDCClientSecret)
	cfg.StatusAddr = getEnv("MGIMPORT_STATUS_ADDR", cfg.StatusAddr)
	cfg.PublishValkey = getEnv("MGIMPORT_PUBLISH_VALKEY", cfg.PublishValkey)
	cfg.Lock = getEnvBool("MGIMPORT_LOCK", cfg.Lock)
	cfg.LockAddr = getEnv("MGIMPORT_LOCK_ADDR", cfg.LockAddr)
	return cfg
}

// FromHCLFile decodes path onto base. Every field is optional in the HCL
// schema, so an attribute absent from the file leaves base's value alone.
func FromHCLFile(path string, base Config) (Config, error) {
	cfg := base
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return base, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
