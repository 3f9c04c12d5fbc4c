// Package config loads server configuration from an optional YAML file and
// the environment. Environment variables win over the file, which wins over
// defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries everything the server needs to talk to Bitbucket.
type Config struct {
	// Email is the default Bitbucket account email, used when
	// authenticate_user is called without one and for auto-authentication.
	Email string `yaml:"email"`
	// Token is the Bitbucket app password or API token. Required for any
	// authenticated call; never logged.
	Token string `yaml:"token"`
	// APIBaseURL points at the Bitbucket 2.0 API root. Empty means the real
	// Bitbucket Cloud; set it to a mock-bitbucket URL in development.
	APIBaseURL string `yaml:"apiBaseURL"`
	// RequestTimeout caps each HTTP request to the remote.
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	// PageSize is the default pagelen for repository listings.
	PageSize int `yaml:"pageSize"`
}

const (
	defaultTimeout  = 30 * time.Second
	defaultPageSize = 50
)

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), and environment overrides
// (BITBUCKET_EMAIL, BITBUCKET_TOKEN, BITBUCKET_API_URL, BITBUCKET_TIMEOUT,
// BITBUCKET_PAGE_SIZE).
func Load(path string) (Config, error) {
	cfg := Config{
		RequestTimeout: defaultTimeout,
		PageSize:       defaultPageSize,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// A missing config file is fine; env vars may carry everything.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("BITBUCKET_EMAIL"); v != "" {
		cfg.Email = v
	}
	if v := os.Getenv("BITBUCKET_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("BITBUCKET_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("BITBUCKET_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse BITBUCKET_TIMEOUT %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("BITBUCKET_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("parse BITBUCKET_PAGE_SIZE %q: must be a positive integer", v)
		}
		cfg.PageSize = n
	}

	return cfg, nil
}
