// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the notifier.
type Config struct {
	// Server configures the connection to the GLPI instance.
	Server ServerConfig `yaml:"server"`

	// Polling configures the tick loop.
	Polling PollingConfig `yaml:"polling"`

	// Toast configures notification delivery.
	Toast ToastConfig `yaml:"toast"`

	// Paths configures where durable state lives.
	Paths PathsConfig `yaml:"paths"`
}

// ServerConfig configures the GLPI REST API connection.
type ServerConfig struct {
	// BaseURL is the API root, e.g. "https://glpi.example.com/apirest.php".
	// Trailing slashes are stripped. Required.
	BaseURL string `yaml:"base_url"`

	// AppToken is the optional App-Token header value. Some GLPI
	// installations require it for every API client.
	AppToken string `yaml:"app_token"`

	// UserToken is the long-lived credential exchanged for a session
	// token. Required.
	UserToken string `yaml:"user_token"`

	// InsecureSkipVerify disables TLS certificate verification.
	// Intended for lab instances with self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// PollingConfig configures the tick loop.
type PollingConfig struct {
	// IntervalSeconds is the pause between ticks. Default: 60.
	IntervalSeconds int `yaml:"interval_seconds"`

	// BatchLimit bounds how many tickets one query fetches. Default: 200.
	BatchLimit int `yaml:"batch_limit"`

	// FirstRunNotify controls whether the very first tick delivers
	// notifications for the existing backlog (true) or just baselines
	// the seen set (false, the default).
	FirstRunNotify bool `yaml:"first_run_notify"`

	// DebugList logs the fetched ticket batch each tick, and a sample
	// of recent tickets when the batch is empty.
	DebugList bool `yaml:"debug_list"`
}

// ToastConfig configures notification delivery.
type ToastConfig struct {
	// AppID is the application identity passed to the toast helper.
	// Default: "GlpiNotifier".
	AppID string `yaml:"app_id"`

	// URLTemplate is the ticket URL opened when the user presses the
	// toast button, with "{id}" replaced by the ticket id. When empty,
	// toasts have no button.
	URLTemplate string `yaml:"url_template"`

	// LogoPath is an explicit image to attach to toasts. When empty,
	// the delivery layer falls back to a bundled or cached logo.
	LogoPath string `yaml:"logo_path"`

	// ProfileFile is an optional JSONC toast profile overriding button
	// label, display duration, logo, and URL template.
	ProfileFile string `yaml:"profile_file"`

	// HelperDir is the fixed install directory checked for the toast
	// helper binary after the executable's own directory and before
	// PATH lookup.
	HelperDir string `yaml:"helper_dir"`
}

// PathsConfig configures durable state locations.
type PathsConfig struct {
	// DataDir is the per-user application data directory holding the
	// seen-set state, the heartbeat file, and the cached logo.
	DataDir string `yaml:"data_dir"`
}

// Default returns the built-in defaults. The config file and
// environment variables are merged over these.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Polling: PollingConfig{
			IntervalSeconds: 60,
			BatchLimit:      200,
		},
		Toast: ToastConfig{
			AppID: "GlpiNotifier",
		},
		Paths: PathsConfig{
			DataDir: filepath.Join(homeDir, ".local", "share", "glpi-notifier"),
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML
// file named by GLPI_NOTIFY_CONFIG (if set), then environment variable
// overrides. An unset GLPI_NOTIFY_CONFIG is not an error — an
// environment-only deployment is the common case under service
// managers.
func Load() (*Config, error) {
	path := os.Getenv("GLPI_NOTIFY_CONFIG")
	return load(path)
}

// LoadFile builds the effective configuration from an explicit file
// path plus environment variable overrides.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty config file path")
	}
	return load(path)
}

func load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	cfg.applyEnvironment()
	cfg.normalize()
	return cfg, nil
}

// applyEnvironment overrides file values with environment variables.
// The names match what the notifier has historically read, so existing
// deployments keep working.
func (c *Config) applyEnvironment() {
	if v, ok := lookupTrimmed("GLPI_BASE_URL"); ok {
		c.Server.BaseURL = v
	}
	if v, ok := lookupTrimmed("GLPI_APP_TOKEN"); ok {
		c.Server.AppToken = v
	}
	if v, ok := lookupTrimmed("GLPI_USER_TOKEN"); ok {
		c.Server.UserToken = v
	}
	if v, ok := lookupTrimmed("GLPI_TICKET_URL_TEMPLATE"); ok {
		c.Toast.URLTemplate = v
	}
	if v, ok := lookupTrimmed("GLPI_LOGO_PATH"); ok {
		c.Toast.LogoPath = v
	}
	if v, ok := lookupTrimmed("POLL_SECONDS"); ok {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.Polling.IntervalSeconds = seconds
		}
	}
	if v, ok := lookupTrimmed("VERIFY_SSL"); ok {
		c.Server.InsecureSkipVerify = !strings.EqualFold(v, "true")
	}
	if v, ok := lookupTrimmed("FIRST_RUN_NOTIFY"); ok {
		c.Polling.FirstRunNotify = strings.EqualFold(v, "true")
	}
	if v, ok := lookupTrimmed("DEBUG_LIST"); ok {
		c.Polling.DebugList = strings.EqualFold(v, "true")
	}
}

// lookupTrimmed reads an environment variable and trims whitespace.
// Set-but-empty counts as unset; operators pasting tokens with stray
// spaces or a trailing newline get the value they meant.
func lookupTrimmed(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// normalize cleans values after merging: trailing slash stripping and
// zero-value backstops.
func (c *Config) normalize() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Polling.IntervalSeconds <= 0 {
		c.Polling.IntervalSeconds = 60
	}
	if c.Polling.BatchLimit <= 0 {
		c.Polling.BatchLimit = 200
	}
	if c.Toast.AppID == "" {
		c.Toast.AppID = "GlpiNotifier"
	}
}

// Validate checks the configuration for errors. All problems are
// reported together so the operator fixes them in one pass.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.BaseURL == "" {
		errs = append(errs, fmt.Errorf("server.base_url is required (or set GLPI_BASE_URL)"))
	}
	if c.Server.UserToken == "" {
		errs = append(errs, fmt.Errorf("server.user_token is required (or set GLPI_USER_TOKEN)"))
	}
	if c.Paths.DataDir == "" {
		errs = append(errs, fmt.Errorf("paths.data_dir is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Interval returns the poll interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

// StatePath returns the seen-set state file location.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.DataDir, "seen.cbor")
}

// HeartbeatPath returns the liveness file location.
func (c *Config) HeartbeatPath() string {
	return filepath.Join(c.Paths.DataDir, "heartbeat.json")
}

// CachedLogoPath returns where a previously provisioned logo may be
// cached in the data directory.
func (c *Config) CachedLogoPath() string {
	return filepath.Join(c.Paths.DataDir, "logo.png")
}

// EnsurePaths creates the data directory if it does not exist.
func (c *Config) EnsurePaths() error {
	if err := os.MkdirAll(c.Paths.DataDir, 0700); err != nil {
		return fmt.Errorf("config: creating data dir %s: %w", c.Paths.DataDir, err)
	}
	return nil
}
