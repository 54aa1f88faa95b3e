// Package logging routes slog output to the fixed append-only log file.
// Every operation writes timestamped leveled lines there; the file is
// never rotated by this tool.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Setup opens the log file for appending and installs a text handler as
// the process-wide default logger. It returns a close function for the
// underlying file. When the file cannot be opened (read-only filesystem,
// missing home), logging falls back to stderr rather than blocking the
// operation.
func Setup(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		useWriter(os.Stderr)
		return nopClose, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		useWriter(os.Stderr)
		return nopClose, fmt.Errorf("open log file: %w", err)
	}
	useWriter(f)
	return f.Close, nil
}

func useWriter(w io.Writer) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(h))
}

func nopClose() error { return nil }
