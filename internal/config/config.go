// Package config provides configuration utilities for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultBaseURL     = "http://localhost:5000/api"
	DefaultSessionPath = "$HOME/.local/share/expense/session.db"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
)

// Config holds the resolved client configuration.
type Config struct {
	BaseURL     string
	SessionPath string
	LogLevel    string
	LogFormat   string
	Timeout     time.Duration
	// DashboardYear is the year preselected by the dashboard; 0 lets the
	// server pick.
	DashboardYear int
}

// Load resolves configuration with this precedence:
// 1. Viper (flags, config file, EXPENSE_ env vars)
// 2. Direct environment variables (EXPENSE_API_URL)
// 3. Default values
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BaseURL:     DefaultBaseURL,
		SessionPath: DefaultSessionPath,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
	}

	if s := v.GetString("api.base_url"); s != "" {
		cfg.BaseURL = s
	} else if s := os.Getenv("EXPENSE_API_URL"); s != "" {
		cfg.BaseURL = s
	}
	if d := v.GetDuration("api.timeout"); d > 0 {
		cfg.Timeout = d
	}
	if s := v.GetString("session.path"); s != "" {
		cfg.SessionPath = s
	}
	if s := v.GetString("logging.level"); s != "" {
		cfg.LogLevel = s
	}
	if s := v.GetString("logging.format"); s != "" {
		cfg.LogFormat = s
	}
	cfg.DashboardYear = v.GetInt("dashboard.year")

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.SessionPath = ExpandPath(cfg.SessionPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot use.
func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.BaseURL)
	switch {
	case c.BaseURL == "":
		problems = append(problems, "api.base_url is required")
	case err != nil:
		problems = append(problems, fmt.Sprintf("invalid api.base_url %q: %v", c.BaseURL, err))
	case u.Scheme != "http" && u.Scheme != "https":
		problems = append(problems, fmt.Sprintf("invalid api.base_url %q: scheme must be http or https", c.BaseURL))
	case u.Host == "":
		problems = append(problems, fmt.Sprintf("invalid api.base_url %q: missing host", c.BaseURL))
	}

	if c.SessionPath == "" {
		problems = append(problems, "session.path is required")
	}
	if c.Timeout < 0 {
		problems = append(problems, "api.timeout must not be negative")
	}
	if c.DashboardYear < 0 {
		problems = append(problems, "dashboard.year must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
