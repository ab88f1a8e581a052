package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  host: 127.0.0.1
  port: 4000
history:
  backend: memory
  capacity: 50
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.History.Backend != "memory" {
		t.Errorf("History.Backend = %q, want memory", cfg.History.Backend)
	}
	if cfg.History.Capacity != 50 {
		t.Errorf("History.Capacity = %d, want 50", cfg.History.Capacity)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
history:
  backend: postgres
database:
  host: localhost
  name: relay
  user: relay
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "{}\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Connections.PingInterval != 15*time.Second {
		t.Errorf("Connections.PingInterval = %v, want 15s", cfg.Connections.PingInterval)
	}
	if cfg.Connections.EventBufferSize != DefaultEventBufferSize {
		t.Errorf("Connections.EventBufferSize = %d, want %d", cfg.Connections.EventBufferSize, DefaultEventBufferSize)
	}
	if cfg.History.Backend != "memory" {
		t.Errorf("History.Backend = %q, want memory", cfg.History.Backend)
	}
	if cfg.Database.SSLMode != "prefer" {
		t.Errorf("Database.SSLMode = %q, want prefer", cfg.Database.SSLMode)
	}
}

func TestLoadAndValidate_DefaultsPass(t *testing.T) {
	path := writeTempFile(t, "{}\n")

	if _, err := LoadAndValidate(path); err != nil {
		t.Errorf("LoadAndValidate failed on defaulted config: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "bad backend",
			mutate:  func(c *Config) { c.History.Backend = "redis" },
			wantErr: "history.backend",
		},
		{
			name: "postgres backend missing host",
			mutate: func(c *Config) {
				c.History.Backend = "postgres"
			},
			wantErr: "database.host is required",
		},
		{
			name: "min conns above max",
			mutate: func(c *Config) {
				c.History.Backend = "postgres"
				c.Database.Host = "localhost"
				c.Database.Name = "relay"
				c.Database.User = "relay"
				c.Database.Password = "pw"
				c.Database.MinConns = 20
			},
			wantErr: "min_conns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
