package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "default port", input: "8000", want: 8000},
		{name: "ephemeral", input: "0", want: 0},
		{name: "max port", input: "65535", want: 65535},
		{name: "surrounding whitespace", input: " 9000 ", want: 9000},
		{name: "letters", input: "abc", wantErr: true},
		{name: "float", input: "80.5", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "too large", input: "65536", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePort(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPort) {
					t.Fatalf("ParsePort(%q) error = %v, want ErrInvalidPort", tt.input, err)
				}
				if !strings.Contains(err.Error(), "'"+tt.input+"'") {
					t.Errorf("ParsePort(%q) error %q does not name the value", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePort(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePort(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Addr() != ":8000" {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), ":8000")
	}
	if cfg.GetShutdownTimeout() != 5*time.Second {
		t.Errorf("GetShutdownTimeout() = %v, want 5s", cfg.GetShutdownTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
	for name, want := range CORSHeaders() {
		if got := cfg.Headers[name]; got != want {
			t.Errorf("Headers[%s] = %q, want %q", name, got, want)
		}
	}
}

func TestDefault_HeadersNotShared(t *testing.T) {
	a := Default()
	a.Headers["Access-Control-Allow-Origin"] = "https://example.com"
	b := Default()
	if b.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Error("modifying one Default() leaked into another")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid with root", modify: func(c *Config) { c.Root = dir }},
		{name: "port out of range", modify: func(c *Config) { c.Port = 70000 }, wantErr: ErrInvalidPort},
		{name: "bad color", modify: func(c *Config) { c.Color = "rainbow" }, wantErr: ErrInvalidColor},
		{name: "bad timeout", modify: func(c *Config) { c.ShutdownTimeout = "soon" }, wantErr: ErrInvalidShutdownTimeout},
		{name: "root is file", modify: func(c *Config) { c.Root = file }, wantErr: ErrRootNotDir},
		{name: "root missing", modify: func(c *Config) { c.Root = filepath.Join(dir, "nope") }, wantErr: os.ErrNotExist},
		{
			name:    "cors origin changed",
			modify:  func(c *Config) { c.Headers["Access-Control-Allow-Origin"] = "https://example.com" },
			wantErr: ErrCORSHeaderChanged,
		},
		{
			name:    "cors header removed",
			modify:  func(c *Config) { delete(c.Headers, "Access-Control-Allow-Headers") },
			wantErr: ErrCORSHeaderChanged,
		},
		{
			name:   "extra header allowed",
			modify: func(c *Config) { c.Headers["Cache-Control"] = "no-store" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "devserve.yaml")
	yamlData := `port: 9000
host: 127.0.0.1
title: Shop
shutdown_timeout: 2s
headers:
  cache-control: no-store
`
	if err := os.WriteFile(yamlPath, []byte(yamlData), 0o644); err != nil {
		t.Fatal(err)
	}

	tomlPath := filepath.Join(dir, "devserve.toml")
	tomlData := `port = 9001
color = "never"

[headers]
"X-Dev" = "1"
`
	if err := os.WriteFile(tomlPath, []byte(tomlData), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("yaml", func(t *testing.T) {
		cfg, err := Load(yamlPath)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != 9000 || cfg.Host != "127.0.0.1" || cfg.Title != "Shop" {
			t.Errorf("Load() = %+v", cfg)
		}
		if cfg.GetShutdownTimeout() != 2*time.Second {
			t.Errorf("GetShutdownTimeout() = %v, want 2s", cfg.GetShutdownTimeout())
		}
		if cfg.Headers["Cache-Control"] != "no-store" {
			t.Errorf("Headers[Cache-Control] = %q, want no-store", cfg.Headers["Cache-Control"])
		}
		if cfg.Color != "auto" {
			t.Errorf("Color = %q, want default auto", cfg.Color)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("toml", func(t *testing.T) {
		cfg, err := Load(tomlPath)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != 9001 || cfg.Color != "never" {
			t.Errorf("Load() = %+v", cfg)
		}
		if cfg.Headers["X-Dev"] != "1" {
			t.Errorf("Headers[X-Dev] = %q, want 1", cfg.Headers["X-Dev"])
		}
		if cfg.Headers["Access-Control-Allow-Origin"] != "*" {
			t.Error("CORS headers missing after Load")
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "devserve.json")
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, ErrUnsupportedConfigType) {
			t.Errorf("Load() error = %v, want ErrUnsupportedConfigType", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load() error = %v, want not exist", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("port: [1"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("Load() expected error for malformed yaml")
		}
	})
}

func TestExecutableDir(t *testing.T) {
	dir, err := ExecutableDir()
	if err != nil {
		t.Fatalf("ExecutableDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat(%s) error = %v", dir, err)
	}
	if !info.IsDir() {
		t.Errorf("ExecutableDir() = %s, not a directory", dir)
	}
}
