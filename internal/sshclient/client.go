// Package sshclient builds and launches ssh invocations via the system ssh
// binary. It does NOT implement the SSH protocol; shelling out means the
// user's full SSH configuration (keys, agents, ProxyJump chains) applies
// without reimplementing any of it.
//
// There are two operations:
//
//   - BuildArgs composes the argument vector for one tunnel group. It is
//     pure construction; the session orchestrator hands the vector to the
//     multiplexer, which runs it inside a pane.
//
//   - RunInteractive opens a regular interactive session to the configured
//     host in a PTY, for the "connect" subcommand.
//
// All arguments are passed via argv (never shell interpolation), so
// hostnames or spec text containing metacharacters cannot inject commands.
package sshclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/creack/pty"

	"tunnelmux/internal/model"
	"tunnelmux/internal/util"
)

// EnsureSSHBinary checks that the "ssh" binary is available on PATH.
// Called early during start so a missing client yields a clear error
// instead of a confusing exec failure per pane.
func EnsureSSHBinary() error {
	if _, err := exec.LookPath("ssh"); err != nil {
		return fmt.Errorf("ssh binary not found in PATH")
	}
	return nil
}

// BuildArgs composes the full ssh argument vector for one tunnel group.
// It fails when the group has no usable forward specs; an ssh process
// that forwards nothing would only waste a pane.
//
// The fixed flags make the process supervisable:
//   - -N -T: no remote command, no pseudo-terminal.
//   - BatchMode: never prompt; the pane has nobody to type a password.
//   - ExitOnForwardFailure: if any requested forward cannot be
//     established (port taken, remote refuses), exit immediately instead
//     of running half-configured.
//   - ServerAliveInterval/CountMax: probe the link so a dead connection
//     makes ssh exit rather than hang silently.
//
// Forward flags are emitted in spec order so the same config always
// produces the same vector.
func BuildArgs(conn model.Connection, specs []model.ForwardSpec) ([]string, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no usable forward specs")
	}
	args := []string{
		"-N", "-T",
		"-o", "BatchMode=yes",
		"-o", "ExitOnForwardFailure=yes",
		"-o", fmt.Sprintf("ServerAliveInterval=%d", util.KeepAliveIntervalSec),
		"-o", fmt.Sprintf("ServerAliveCountMax=%d", util.KeepAliveCountMax),
	}
	if conn.Term != "" {
		args = append(args, "-o", "SetEnv=TERM="+conn.Term)
	}
	args = append(args, "-p", strconv.Itoa(conn.Port))
	for _, f := range specs {
		switch f.Kind {
		case model.ForwardLocal:
			args = append(args, "-L", fmt.Sprintf("localhost:%d:%s:%d", f.LocalPort, f.RemoteHost, f.RemotePort))
		case model.ForwardDynamic:
			args = append(args, "-D", strconv.Itoa(f.LocalPort))
		case model.ForwardRemote:
			args = append(args, "-R", fmt.Sprintf("%d:%s:%d", f.RemotePort, f.LocalHost, f.LocalPort))
		}
	}
	return append(args, conn.Destination()), nil
}

// ConnectCommand creates an exec.Cmd for an interactive session to the
// configured host. The caller connects stdio and starts the process.
func ConnectCommand(conn model.Connection) *exec.Cmd {
	return exec.Command("ssh", "-p", strconv.Itoa(conn.Port), conn.Destination())
}

// RunInteractive opens an interactive ssh session to the configured host
// inside a PTY and blocks until it ends. The PTY is required for password
// prompts, line editing and remote resizing to work.
func RunInteractive(ctx context.Context, conn model.Connection) error {
	cmd := ConnectCommand(conn)

	f, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	// Keystrokes flow into the PTY master; the goroutine ends when the
	// descriptor closes after ssh exits.
	go func() {
		_, _ = io.Copy(f, os.Stdin)
	}()

	// Remote output flows back to the terminal until EOF.
	_, _ = io.Copy(os.Stdout, f)

	if ctx.Err() != nil {
		_ = cmd.Process.Kill()
	}
	return cmd.Wait()
}
