package mux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Tmux implements the Multiplexer interface for tmux.
type Tmux struct{}

// NewTmux creates a new tmux multiplexer.
func NewTmux() *Tmux {
	return &Tmux{}
}

// EnsureTmuxBinary checks that the "tmux" binary is available on PATH.
func EnsureTmuxBinary() error {
	if _, err := exec.LookPath("tmux"); err != nil {
		return fmt.Errorf("tmux binary not found in PATH")
	}
	return nil
}

// HasSession reports whether the named session exists. The "=" prefix
// forces an exact name match instead of tmux's default prefix matching.
func (t *Tmux) HasSession(ctx context.Context, name string) bool {
	_, err := t.run(ctx, "has-session", "-t", "="+name)
	return err == nil
}

// NewSession creates a detached session whose first pane runs command.
func (t *Tmux) NewSession(ctx context.Context, name, title string, command []string) error {
	if _, err := t.run(ctx, "new-session", "-d", "-s", name, "-n", "tunnels", ShellJoin(command)); err != nil {
		return fmt.Errorf("tmux new-session: %w", err)
	}
	return t.titleActivePane(ctx, name, title)
}

// SplitPane adds a pane running command to the session's window. The new
// pane becomes the active one, which lets titleActivePane target it.
func (t *Tmux) SplitPane(ctx context.Context, name, title string, command []string) error {
	if _, err := t.run(ctx, "split-window", "-t", name+":", ShellJoin(command)); err != nil {
		return fmt.Errorf("tmux split-window: %w", err)
	}
	return t.titleActivePane(ctx, name, title)
}

// SelectLayout applies a named layout to the session's window.
func (t *Tmux) SelectLayout(ctx context.Context, name, layout string) error {
	if _, err := t.run(ctx, "select-layout", "-t", name+":", layout); err != nil {
		return fmt.Errorf("tmux select-layout: %w", err)
	}
	return nil
}

// KeepDeadPanes sets remain-on-exit on the session so that a pane whose
// ssh process exits stays visible (and reportable) instead of closing.
func (t *Tmux) KeepDeadPanes(ctx context.Context, name string) error {
	if _, err := t.run(ctx, "set-option", "-t", name, "remain-on-exit", "on"); err != nil {
		return fmt.Errorf("tmux set-option remain-on-exit: %w", err)
	}
	return nil
}

// ListPanes enumerates the session's panes with their liveness flags.
func (t *Tmux) ListPanes(ctx context.Context, name string) ([]Pane, error) {
	format := "#{pane_index}\t#{pane_pid}\t#{pane_dead}\t#{pane_title}\t#{pane_current_command}"
	out, err := t.run(ctx, "list-panes", "-t", name+":", "-F", format)
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes: %w", err)
	}
	return parsePaneList(out), nil
}

// KillSession destroys the session and all child processes inside it.
func (t *Tmux) KillSession(ctx context.Context, name string) error {
	if _, err := t.run(ctx, "kill-session", "-t", "="+name); err != nil {
		return fmt.Errorf("tmux kill-session: %w", err)
	}
	return nil
}

// Attach takes over the terminal with the session view and blocks until
// the user detaches or the session dies.
func (t *Tmux) Attach(name string) error {
	cmd := exec.Command("tmux", "attach-session", "-t", "="+name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (t *Tmux) titleActivePane(ctx context.Context, name, title string) error {
	if _, err := t.run(ctx, "select-pane", "-t", name+":", "-T", title); err != nil {
		return fmt.Errorf("tmux select-pane -T: %w", err)
	}
	return nil
}

// run executes a tmux command and returns its stdout, folding stderr into
// the error for context.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// parsePaneList parses list-panes -F output, one tab-separated pane per line.
func parsePaneList(out string) []Pane {
	var panes []Pane
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 5)
		if len(parts) != 5 {
			continue
		}
		idx, _ := strconv.Atoi(parts[0])
		pid, _ := strconv.Atoi(parts[1])
		panes = append(panes, Pane{
			Index:   idx,
			PID:     pid,
			Dead:    parts[2] == "1",
			Title:   parts[3],
			Command: parts[4],
		})
	}
	return panes
}

// ShellJoin renders an argument vector as a single shell command line,
// quoting only where needed. tmux takes pane commands as one
// shell-command string, so the vector built by sshclient has to survive
// one round of shell splitting unchanged.
func ShellJoin(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, a := range argv {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789._-=:/@%+,"

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !strings.ContainsRune(shellSafe, r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
