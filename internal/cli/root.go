// Package cli provides the command-line interface for tunnelmux.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tunnelmux/internal/appconfig"
	"tunnelmux/internal/doctor"
	"tunnelmux/internal/events"
	"tunnelmux/internal/logging"
	"tunnelmux/internal/model"
	"tunnelmux/internal/mux"
	"tunnelmux/internal/session"
	"tunnelmux/internal/sshclient"
	"tunnelmux/internal/ui"
	"tunnelmux/internal/util"
)

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tunnelmux",
		Short: "Supervise grouped SSH tunnels in one tmux session",
		Long: `tunnelmux maps every configured tunnel group to one pane of a single
tmux session, giving each group's ssh process a visible home with
shared lifecycle control (start/stop/restart/status).`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run()
		},
	}

	root.AddCommand(
		newStartCmd(),
		newStopCmd(),
		newRestartCmd(),
		newStatusCmd(),
		newListCmd(),
		newAttachCmd(),
		newConnectCmd(),
		newEventsCmd(),
		newDoctorCmd(),
	)
	return root
}

// setupLogging points slog at the fixed log file. Failures degrade to
// stderr logging; they never block an operation.
func setupLogging() {
	path, err := appconfig.LogFilePath()
	if err != nil {
		return
	}
	_, _ = logging.Setup(path)
}

// newOrchestrator loads the configuration and wires the real tmux
// controller and event journal into a session orchestrator.
func newOrchestrator() (*session.Orchestrator, *appconfig.Config, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, nil, err
	}
	return session.New(&cfg, mux.NewTmux(), events.NewStore()), &cfg, nil
}

func ensureBinaries() error {
	if err := sshclient.EnsureSSHBinary(); err != nil {
		return err
	}
	return mux.EnsureTmuxBinary()
}

func newStartCmd() *cobra.Command {
	var attach bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the tunnel session (one pane per group)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureBinaries(); err != nil {
				return err
			}
			o, _, err := newOrchestrator()
			if err != nil {
				return err
			}
			return o.Start(cmd.Context(), attach)
		},
	}
	cmd.Flags().BoolVar(&attach, "attach", false, "attach to the session after starting")
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the session and every tunnel in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, _, err := newOrchestrator()
			if err != nil {
				return err
			}
			return o.Stop(cmd.Context())
		},
	}
}

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop, wait for ports to free up, then start again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureBinaries(); err != nil {
				return err
			}
			o, _, err := newOrchestrator()
			if err != nil {
				return err
			}
			return o.Restart(cmd.Context())
		},
	}
}

func newStatusCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session state and per-group pane liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, _, err := newOrchestrator()
			if err != nil {
				return err
			}
			rep, err := o.Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			if !rep.Running {
				fmt.Printf("session %s: not running\n", rep.Session)
				return nil
			}
			fmt.Printf("session %s: running\n", rep.Session)
			fmt.Printf("%-16s %-10s %-8s %s\n", "GROUP", "STATE", "PID", "FORWARDS")
			for _, g := range rep.Groups {
				fmt.Printf("%-16s %-10s %-8s %s\n", g.Group, g.State, formatPID(g.PID), formatForwards(g.Forwards))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured tunnel groups and their specs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, cfg, err := newOrchestrator()
			if err != nil {
				return err
			}
			if cfg.ConfigFile != "" {
				fmt.Printf("config: %s\n", cfg.ConfigFile)
			} else {
				fmt.Println("config: built-in defaults")
			}
			fmt.Printf("%-16s %-28s %s\n", "GROUP", "RAW SPEC", "FORWARDS")
			var warnings []string
			for _, info := range o.List() {
				fmt.Printf("%-16s %-28s %s\n", info.Name, info.RawSpec, formatForwards(info.Forwards))
				warnings = append(warnings, info.Errors...)
			}
			if len(warnings) > 0 {
				fmt.Fprintln(os.Stderr, "warnings:")
				for _, w := range warnings {
					fmt.Fprintf(os.Stderr, "  - %s\n", w)
				}
			}
			return nil
		},
	}
}

func newAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach",
		Short: "Attach the terminal to the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, _, err := newOrchestrator()
			if err != nil {
				return err
			}
			return o.Attach(cmd.Context())
		},
	}
}

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Open an interactive ssh session to the tunnel host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sshclient.EnsureSSHBinary(); err != nil {
				return err
			}
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			return sshclient.RunInteractive(cmd.Context(), cfg.Connection)
		},
	}
}

func newEventsCmd() *cobra.Command {
	var (
		limit int
		group string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent session and group lifecycle events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			evts, err := events.NewStore().Read(events.Query{Group: group, Limit: limit})
			if err != nil {
				return err
			}
			for _, evt := range evts {
				fmt.Printf("%s %-16s %-12s %s\n",
					evt.Timestamp.Format("2006-01-02 15:04:05"),
					evt.EventType,
					util.EmptyDash(evt.Group),
					evt.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events to show")
	cmd.Flags().StringVar(&group, "group", "", "only show events for this tunnel group")
	return cmd
}

func newDoctorCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			rep := doctor.Run(&cfg)
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			if len(rep.Issues) == 0 {
				fmt.Println("no issues found")
				return nil
			}
			for _, issue := range rep.Issues {
				fmt.Printf("[%s] %s (%s): %s\n    fix: %s\n",
					strings.ToUpper(string(issue.Severity)), issue.Check, issue.Target, issue.Message, issue.Recommendation)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func formatPID(pid int) string {
	if pid <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", pid)
}

func formatForwards(specs []model.ForwardSpec) string {
	if len(specs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(specs))
	for _, f := range specs {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ", ")
}
