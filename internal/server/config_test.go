package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMergesPresentKeys(t *testing.T) {
	path := writeConfig(t, `{
		"transport": "kcp",
		"sessionTTL": "90s",
		"game": {"shieldHealth": 50, "physics": {"wind": 0.5}, "autoReset": false}
	}`)

	base := DefaultAppConfig()
	cfg, err := LoadConfig(path, base)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Transport != "kcp" || cfg.SessionTTL != 90*time.Second {
		t.Fatalf("top-level keys not merged: %+v", cfg)
	}
	if cfg.Game.ShieldHealth != 50 || cfg.Game.Physics.Wind != 0.5 || cfg.Game.AutoReset {
		t.Fatalf("game keys not merged: %+v", cfg.Game)
	}
	if cfg.Addr != base.Addr || cfg.Game.Physics.Gravity != base.Game.Physics.Gravity || cfg.Game.Width != base.Game.Width {
		t.Fatalf("absent keys should keep defaults: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	base := DefaultAppConfig()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"), base)
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Addr != base.Addr || cfg.TickRate != base.TickRate {
		t.Fatalf("missing file should keep base config")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	for name, body := range map[string]string{
		"bad json":     `{"addr": `,
		"bad duration": `{"sessionTTL": "soon"}`,
	} {
		if _, err := LoadConfig(writeConfig(t, body), DefaultAppConfig()); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSanitize(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Transport = "udp"
	cfg.TickRate = 0
	cfg.SessionTTL = -time.Second
	cfg.JWTSecret = ""
	cfg.Game.Width = 10
	cfg.Game.Physics.AirResistance = 2

	got := cfg.Sanitize()
	def := DefaultAppConfig()
	if got.Transport != "tcp" || got.TickRate != def.TickRate || got.SessionTTL != def.SessionTTL || got.JWTSecret == "" {
		t.Fatalf("server fields not sanitized: %+v", got)
	}
	if got.Game.Width != def.Game.Width || got.Game.Height != def.Game.Height {
		t.Fatalf("resolution not sanitized: %dx%d", got.Game.Width, got.Game.Height)
	}
	if got.Game.Physics.AirResistance != def.Game.Physics.AirResistance {
		t.Fatalf("air resistance not sanitized: %v", got.Game.Physics.AirResistance)
	}
}

func TestJWTSecretFromEnv(t *testing.T) {
	t.Setenv(jwtSecretEnv, "from-env")
	if got := DefaultAppConfig().JWTSecret; got != "from-env" {
		t.Fatalf("secret: got %q", got)
	}
}

func TestOverrides(t *testing.T) {
	addr := ":9000"
	seed := int64(12)
	cfg := Overrides{Addr: &addr, Seed: &seed}.Apply(DefaultAppConfig())
	if cfg.Addr != addr || cfg.Game.Seed != seed {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Transport != DefaultTransport {
		t.Fatalf("unset override changed transport")
	}
}
