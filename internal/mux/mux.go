// Package mux abstracts the terminal multiplexer that hosts the supervised
// session. The session orchestrator talks only to the Multiplexer
// interface, so its lifecycle logic is testable against a fake without a
// real tmux server.
package mux

import "context"

// Pane is one execution unit inside the supervised session.
type Pane struct {
	Index   int    // pane index within the session's window
	Title   string // tunnel group name, set at creation time
	PID     int    // pid of the pane's foreground process
	Dead    bool   // the pane's process has exited but the pane lingers
	Command string // current foreground command name
}

// Multiplexer abstracts the session and pane operations the orchestrator
// needs. Every command is one external call whose success is checked
// individually.
type Multiplexer interface {
	// HasSession reports whether a session with the given name exists.
	HasSession(ctx context.Context, name string) bool

	// NewSession creates a detached session whose first pane runs the
	// given command, and titles that pane.
	NewSession(ctx context.Context, name, title string, command []string) error

	// SplitPane adds a pane running the given command to the session's
	// window and titles it.
	SplitPane(ctx context.Context, name, title string, command []string) error

	// SelectLayout applies a named layout to the session's window.
	SelectLayout(ctx context.Context, name, layout string) error

	// KeepDeadPanes makes the session retain panes whose process has
	// exited, so a dead tunnel stays observable instead of vanishing.
	KeepDeadPanes(ctx context.Context, name string) error

	// ListPanes enumerates the session's panes.
	ListPanes(ctx context.Context, name string) ([]Pane, error)

	// KillSession destroys the session and every process inside it.
	KillSession(ctx context.Context, name string) error

	// Attach takes over the caller's terminal with the session view and
	// blocks until the user detaches.
	Attach(name string) error
}
