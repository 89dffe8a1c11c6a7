// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the database DSN goes to the OS
// keychain or comes from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"sqlpilot/cli/internal/dialect"
	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/xdg"
)

// Environment variables that override the file.
const (
	EnvModelURL     = "SQLPILOT_MODEL_URL"
	EnvModel        = "SQLPILOT_MODEL"
	EnvModelTimeout = "SQLPILOT_MODEL_TIMEOUT"
	EnvDialect      = "SQLPILOT_DIALECT"
	EnvLogLevel     = "SQLPILOT_LOG_LEVEL"
)

// SchemaFile is the default schema document name inside the config dir.
const SchemaFile = "database_schema.md"

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel string        `json:"log_level"`
	Dialect  string        `json:"dialect"`
	Model    ModelConfig   `json:"model"`
	Schema   SchemaConfig  `json:"schema"`
	History  HistoryConfig `json:"history"`
	Server   ServerConfig  `json:"server"`
}

// ModelConfig points at the language model service.
type ModelConfig struct {
	BaseURL        string `json:"base_url"`
	Name           string `json:"name"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout returns the model call timeout.
func (m ModelConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// SchemaConfig locates the schema document spliced into prompts.
type SchemaConfig struct {
	Path string `json:"path"`
}

// HistoryConfig bounds the query history.
type HistoryConfig struct {
	Limit int `json:"limit"`
}

// ServerConfig configures `sqlpilot serve`.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// Default returns the built-in configuration. dir is the config directory
// used for the default schema path.
func Default(dir string) Config {
	return Config{
		LogLevel: "info",
		Dialect:  string(dialect.Default),
		Model: ModelConfig{
			BaseURL:        "http://127.0.0.1:11434",
			Name:           "llama3",
			TimeoutSeconds: 45,
		},
		Schema:  SchemaConfig{Path: filepath.Join(dir, SchemaFile)},
		History: HistoryConfig{Limit: 50},
		Server:  ServerConfig{Addr: "127.0.0.1:5000"},
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults. Fields absent
// from the file keep their defaults and environment overrides are applied last.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}
	c := Default(filepath.Dir(p))

	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, perr.Wrap(perr.ConfigInvalid, "parse "+p, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvModelURL); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv(EnvDialect); v != "" {
		c.Dialect = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvModelTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return perr.Wrap(perr.ConfigInvalid, EnvModelTimeout+" must be a number of seconds", err)
		}
		c.Model.TimeoutSeconds = n
	}
	return nil
}

// Validate rejects values the tool cannot run with.
func (c Config) Validate() error {
	if c.Model.TimeoutSeconds <= 0 {
		return perr.New(perr.ConfigInvalid, "model.timeout_seconds must be positive")
	}
	if strings.TrimSpace(c.Model.BaseURL) == "" {
		return perr.New(perr.ConfigInvalid, "model.base_url is required")
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		return perr.New(perr.ConfigInvalid, "model.name is required")
	}
	if _, err := dialect.Parse(c.Dialect); err != nil {
		return perr.Wrap(perr.ConfigInvalid, "dialect", err)
	}
	if c.History.Limit <= 0 {
		return perr.New(perr.ConfigInvalid, "history.limit must be positive")
	}
	return nil
}

// TargetDialect returns the parsed dialect. Call after Validate.
func (c Config) TargetDialect() dialect.Dialect {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return dialect.Default
	}
	return d
}

// setters maps the keys accepted by `sqlpilot config set`.
var setters = map[string]func(c *Config, v string) error{
	"log_level": func(c *Config, v string) error { c.LogLevel = v; return nil },
	"dialect":   func(c *Config, v string) error { c.Dialect = v; return nil },
	"model.base_url": func(c *Config, v string) error {
		c.Model.BaseURL = v
		return nil
	},
	"model.name": func(c *Config, v string) error { c.Model.Name = v; return nil },
	"model.timeout_seconds": func(c *Config, v string) error {
		return setInt(&c.Model.TimeoutSeconds, v)
	},
	"schema.path":   func(c *Config, v string) error { c.Schema.Path = v; return nil },
	"history.limit": func(c *Config, v string) error { return setInt(&c.History.Limit, v) },
	"server.addr":   func(c *Config, v string) error { c.Server.Addr = v; return nil },
}

var getters = map[string]func(c Config) string{
	"log_level":             func(c Config) string { return c.LogLevel },
	"dialect":               func(c Config) string { return c.Dialect },
	"model.base_url":        func(c Config) string { return c.Model.BaseURL },
	"model.name":            func(c Config) string { return c.Model.Name },
	"model.timeout_seconds": func(c Config) string { return strconv.Itoa(c.Model.TimeoutSeconds) },
	"schema.path":           func(c Config) string { return c.Schema.Path },
	"history.limit":         func(c Config) string { return strconv.Itoa(c.History.Limit) },
	"server.addr":           func(c Config) string { return c.Server.Addr },
}

// Get returns the value of one dotted key.
func (c Config) Get(key string) (string, bool) {
	get, ok := getters[key]
	if !ok {
		return "", false
	}
	return get(c), true
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return perr.Wrap(perr.ConfigInvalid, fmt.Sprintf("%q is not a number", v), err)
	}
	*dst = n
	return nil
}

// Keys lists the settable keys in stable order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one dotted key and validates the result.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return perr.New(perr.ConfigInvalid, fmt.Sprintf("unknown key %q (valid: %s)", key, strings.Join(Keys(), ", ")))
	}
	next := *c
	if err := set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
