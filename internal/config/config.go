// Package config provides configuration management for the development file server.
// A Config is built once at process start from defaults, an optional YAML or TOML
// file and the command line, and is then passed by value to the server.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration validation
var (
	ErrInvalidPort            = errors.New("invalid port")
	ErrRootNotDir             = errors.New("root is not a directory")
	ErrInvalidColor           = errors.New("color must be one of auto, always, never")
	ErrInvalidShutdownTimeout = errors.New("invalid shutdown_timeout")
	ErrCORSHeaderChanged      = errors.New("CORS headers cannot be removed or changed")
	ErrUnsupportedConfigType  = errors.New("unsupported config file type")
)

const (
	// DefaultPort is the port used when none is given on the command line.
	DefaultPort = 8000
	// MaxPort is the highest valid TCP port.
	MaxPort = 65535
	// DefaultTitle is the banner title.
	DefaultTitle = "Development server"
)

// CORSHeaders returns the headers attached to every response. A config file
// may add headers but never alter these.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
}

// Config represents the complete server configuration.
type Config struct {
	Port            int               `yaml:"port" toml:"port"`
	Host            string            `yaml:"host" toml:"host"`
	Root            string            `yaml:"root" toml:"root"`
	Title           string            `yaml:"title" toml:"title"`
	Color           string            `yaml:"color" toml:"color"`
	LogLevel        string            `yaml:"log_level" toml:"log_level"`
	LogFormat       string            `yaml:"log_format" toml:"log_format"`
	ShutdownTimeout string            `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	Headers         map[string]string `yaml:"headers" toml:"headers"`
}

// Default returns the configuration used when no file and no arguments are given.
// Root is left empty and resolved to the executable's directory by the caller.
func Default() Config {
	return Config{
		Port:            DefaultPort,
		Title:           DefaultTitle,
		Color:           "auto",
		LogLevel:        "info",
		LogFormat:       "console",
		ShutdownTimeout: "5s",
		Headers:         CORSHeaders(),
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetShutdownTimeout parses and returns the graceful shutdown timeout.
func (c Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == "" {
		return 5 * time.Second
	}
	timeout, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return timeout
}

// ParsePort converts a command-line port argument into a port number.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w '%s'", ErrInvalidPort, s)
	}
	if port < 0 || port > MaxPort {
		return 0, fmt.Errorf("%w '%s': must be between 0 and %d", ErrInvalidPort, s, MaxPort)
	}
	return port, nil
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file and overlays it on Default().
// The result is not validated; callers apply command-line overrides first.
func Load(filePath string) (Config, error) {
	cfg := Default()
	cfg.Headers = nil
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Default(), fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedConfigType, filePath)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	cfg.Headers = mergeHeaders(cfg.Headers)
	return cfg, nil
}

// mergeHeaders canonicalizes header names and fills in any CORS header the file
// left out. Changed CORS values survive so Validate can reject them.
func mergeHeaders(h map[string]string) map[string]string {
	merged := CORSHeaders()
	for k, v := range h {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	return merged
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > MaxPort {
		return fmt.Errorf("%w '%d': must be between 0 and %d", ErrInvalidPort, c.Port, MaxPort)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}
	if c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidShutdownTimeout, err)
		}
	}
	for name, want := range CORSHeaders() {
		if got, ok := c.Headers[name]; !ok || got != want {
			return fmt.Errorf("%w: %s", ErrCORSHeaderChanged, name)
		}
	}
	if c.Root != "" {
		info, err := os.Stat(c.Root)
		if err != nil {
			return fmt.Errorf("root %s: %w", c.Root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrRootNotDir, c.Root)
		}
	}
	return nil
}

// ExecutableDir returns the directory containing the running executable,
// with symlinks resolved. It is the default web root.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path %s: %w", exe, err)
	}
	return filepath.Dir(resolved), nil
}
