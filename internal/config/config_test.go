package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Port != want.Port || cfg.Mode != want.Mode || cfg.Backpressure != "drop" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.PingPeriod != 54*time.Second || cfg.PongWait != time.Minute {
		t.Fatalf("keepalive = %s/%s", cfg.PingPeriod, cfg.PongWait)
	}
	if len(cfg.ICEServers) != 1 || cfg.ICEServers[0] != "stun:stun.l.google.com:19302" {
		t.Fatalf("ice_servers = %v", cfg.ICEServers)
	}
	if cfg.Secret == "" {
		t.Fatal("secret was not generated")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	body := `mode: debug
port: 9000
secret: s3cret
backpressure: kick
send_buffer: 8
ice_servers:
  - stun:stun.example.org:3478
  - turn:turn.example.org:3478
turn_username: relay
turn_credential: pw
allowed_origins:
  - https://app.example.org
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RELAY_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("port = %d, env override lost", cfg.Port)
	}
	if cfg.Mode != "debug" || cfg.Secret != "s3cret" || cfg.Backpressure != "kick" || cfg.SendBuffer != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.ICEServers) != 2 || cfg.ICEServers[1] != "turn:turn.example.org:3478" {
		t.Errorf("ice_servers = %v", cfg.ICEServers)
	}
	if cfg.TURNUsername != "relay" || cfg.TURNCredential != "pw" {
		t.Errorf("turn credentials = %q/%q", cfg.TURNUsername, cfg.TURNCredential)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.org" {
		t.Errorf("allowed_origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RELAY_BACKPRESSURE", "explode")

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"port zero", func(c *Config) { c.Port = 0 }, false},
		{"port too big", func(c *Config) { c.Port = 70000 }, false},
		{"bad mode", func(c *Config) { c.Mode = "prod" }, false},
		{"ping not shorter than pong", func(c *Config) { c.PingPeriod = c.PongWait }, false},
		{"zero buffer", func(c *Config) { c.SendBuffer = 0 }, false},
		{"kick", func(c *Config) { c.Backpressure = "kick" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
