package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tunnelmux/internal/util"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, "tunnelmux")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigFile != "" {
		t.Fatalf("expected defaults, loaded %s", cfg.ConfigFile)
	}
	if cfg.Connection.Host != "localhost" || cfg.Connection.Port != 22 {
		t.Fatalf("unexpected default connection: %+v", cfg.Connection)
	}
	if len(cfg.Tunnels) != 0 {
		t.Fatalf("expected no default tunnels, got %v", cfg.Tunnels)
	}
	if cfg.UI.RefreshSeconds != util.DefaultRefreshSeconds {
		t.Fatalf("unexpected refresh default: %d", cfg.UI.RefreshSeconds)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeConfig(t, xdg, strings.Join([]string{
		"connection:",
		"  host: bastion.example.com",
		"  port: 2222",
		"  user: deploy",
		"tunnels:",
		`  web: "L:8080:web:80 L:8443:web:443"`,
		`  proxy: "D:1080"`,
		"",
	}, "\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigFile == "" {
		t.Fatal("expected a loaded config file path")
	}
	if cfg.Connection.Host != "bastion.example.com" || cfg.Connection.Port != 2222 || cfg.Connection.User != "deploy" {
		t.Fatalf("unexpected connection: %+v", cfg.Connection)
	}
	// Term was not set in the file, so the default must survive the merge.
	if cfg.Connection.Term != "xterm-256color" {
		t.Fatalf("expected default term to survive, got %q", cfg.Connection.Term)
	}
	if len(cfg.Tunnels) != 2 || cfg.Tunnels["proxy"] != "D:1080" {
		t.Fatalf("unexpected tunnels: %v", cfg.Tunnels)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeConfig(t, xdg, "connection:\n  host: x\n  port: 99999\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestCandidatePathsPreferXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	paths := CandidatePaths()
	if len(paths) == 0 || paths[0] != "/tmp/xdg/tunnelmux/config.yaml" {
		t.Fatalf("expected XDG path first, got %v", paths)
	}
	if paths[len(paths)-1] != "/etc/tunnelmux/config.yaml" {
		t.Fatalf("expected /etc fallback last, got %v", paths)
	}
}

func TestStateDirUsesXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	d, err := StateDir()
	if err != nil {
		t.Fatal(err)
	}
	if d != "/tmp/state/tunnelmux" {
		t.Fatalf("unexpected state dir: %s", d)
	}
}
