// Package appconfig manages application configuration and runtime file paths.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tunnelmux/internal/model"
	"tunnelmux/internal/util"
)

// UIConfig contains TUI display settings.
type UIConfig struct {
	RefreshSeconds int `yaml:"refresh_seconds"`
}

// Config holds application-level configuration: the connection settings
// shared by every tunnel group and the group-name -> raw-spec mapping.
// It is built once at startup by merging defaults with the first found
// config file and then passed around explicitly.
type Config struct {
	Connection model.Connection  `yaml:"connection"`
	Tunnels    map[string]string `yaml:"tunnels"`
	UI         UIConfig          `yaml:"ui"`

	// ConfigFile is the path the configuration was loaded from,
	// empty when built-in defaults are in effect.
	ConfigFile string `yaml:"-"`
}

// Default returns the built-in configuration used when no config file
// exists. An absent file is not an error; it just means no tunnel groups
// are configured yet.
func Default() Config {
	return Config{
		Connection: model.Connection{
			Host: "localhost",
			Port: 22,
			User: os.Getenv("USER"),
			Term: "xterm-256color",
		},
		Tunnels: map[string]string{},
		UI:      UIConfig{RefreshSeconds: util.DefaultRefreshSeconds},
	}
}

// CandidatePaths returns the ordered list of config file locations.
// The first existing file wins.
func CandidatePaths() []string {
	var out []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, "tunnelmux", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".config", "tunnelmux", "config.yaml"))
	}
	out = append(out, "/etc/tunnelmux/config.yaml")
	return out
}

// Load reads the first existing candidate config file over the defaults.
// A missing file yields the defaults, not an error; a present but
// malformed file is an error.
func Load() (Config, error) {
	cfg := Default()
	for _, path := range CandidatePaths() {
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.ConfigFile = path
		break
	}
	if err := util.ValidatePort(cfg.Connection.Port); err != nil {
		return Config{}, fmt.Errorf("connection: %w", err)
	}
	if cfg.Connection.Host == "" {
		return Config{}, fmt.Errorf("connection: host must not be empty")
	}
	if cfg.Tunnels == nil {
		cfg.Tunnels = map[string]string{}
	}
	if cfg.UI.RefreshSeconds <= 0 {
		cfg.UI.RefreshSeconds = util.DefaultRefreshSeconds
	}
	return cfg, nil
}

// StateDir returns the directory for runtime artifacts (log file, event
// journal). Uses XDG_STATE_HOME if set, otherwise ~/.local/state/tunnelmux.
func StateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "tunnelmux"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".local", "state", "tunnelmux"), nil
}

// LogFilePath returns the fixed path of the append-only log file.
func LogFilePath() (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "tunnelmux.log"), nil
}

// EventsFilePath returns the full path to events.jsonl.
func EventsFilePath() (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "events.jsonl"), nil
}
