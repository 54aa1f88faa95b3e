// Package util provides common utility functions and constants used across
// the tunnelmux application. This package is intentionally kept
// dependency-free (no imports from other internal/* packages) to serve as a
// shared foundation without introducing circular dependencies.
package util

import "time"

const (
	// RestartDelay is the pause between stop and start during a restart.
	// It exists to let the previous ssh processes release their local
	// listening ports before the new ones bind the same ports. The value
	// is a fixed constant, not adaptive: two seconds comfortably covers
	// the kernel's socket teardown on every platform we run on.
	// Used by: internal/session (Orchestrator.Restart).
	RestartDelay = 2 * time.Second

	// KeepAliveIntervalSec and KeepAliveCountMax configure the ssh
	// client's server-alive probing (ServerAliveInterval /
	// ServerAliveCountMax). Together they bound how long a broken
	// connection is tolerated before ssh exits on its own: with 30s
	// probes and 3 allowed misses, a dead link is abandoned after at
	// most 90 seconds instead of hanging silently.
	// Used by: internal/sshclient (BuildArgs).
	KeepAliveIntervalSec = 30
	KeepAliveCountMax    = 3

	// DefaultRefreshSeconds is the fallback interval (in seconds) for the
	// TUI dashboard's periodic status refresh, used when config.yaml has
	// an invalid or missing ui.refresh_seconds value.
	// Used by: internal/ui and internal/appconfig.
	DefaultRefreshSeconds = 3
)
