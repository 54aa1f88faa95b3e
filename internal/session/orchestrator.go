// Package session owns the supervised tmux session: one pane per tunnel
// group, a two-state lifecycle (absent/running), and the operations the
// CLI exposes over it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tunnelmux/internal/appconfig"
	"tunnelmux/internal/events"
	"tunnelmux/internal/forward"
	"tunnelmux/internal/model"
	"tunnelmux/internal/mux"
	"tunnelmux/internal/sshclient"
	"tunnelmux/internal/util"
)

// Name is the fixed session name. The tool assumes exclusive ownership of
// this one name and never manages any other session.
const Name = "tunnelmux"

// Layout applied whenever the session holds more than one pane.
const Layout = "tiled"

// Report is the read-only result of Status.
type Report struct {
	Running bool                `json:"running"`
	Session string              `json:"session"`
	Groups  []model.GroupStatus `json:"groups,omitempty"`
}

// GroupInfo is one row of List: a configured group, its parse results and
// any spec errors, independent of session state.
type GroupInfo struct {
	Name     string              `json:"name"`
	RawSpec  string              `json:"raw_spec"`
	Forwards []model.ForwardSpec `json:"forwards,omitempty"`
	Errors   []string            `json:"errors,omitempty"`
}

// Orchestrator reconciles the configured tunnel groups against the actual
// session. It exclusively owns the group-name -> pane mapping; no other
// component touches the subprocesses.
type Orchestrator struct {
	cfg *appconfig.Config
	mux mux.Multiplexer
	ev  *events.Store

	// RestartDelay is the pause between stop and start during Restart.
	// Tests shrink it to zero.
	RestartDelay time.Duration
}

// New creates an orchestrator over the given config and multiplexer.
// The event store may be nil to disable journaling.
func New(cfg *appconfig.Config, m mux.Multiplexer, ev *events.Store) *Orchestrator {
	return &Orchestrator{cfg: cfg, mux: m, ev: ev, RestartDelay: util.RestartDelay}
}

// GroupNames returns the configured group names in sorted order. Map
// iteration order is not stable across runs, so panes are always allocated
// alphabetically to keep layouts reproducible.
func (o *Orchestrator) GroupNames() []string {
	names := make([]string, 0, len(o.cfg.Tunnels))
	for name := range o.cfg.Tunnels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start brings the session up, one pane per tunnel group. Calling Start
// while the session is already running is a no-op success (optionally
// attaching). Groups whose spec text yields no usable forwards are logged
// and skipped; if no group survives, Start fails and leaves no session
// behind.
func (o *Orchestrator) Start(ctx context.Context, attach bool) error {
	if o.mux.HasSession(ctx, Name) {
		slog.Info("session already running", "session", Name)
		if attach {
			return o.Attach(ctx)
		}
		return nil
	}

	if len(o.cfg.Tunnels) == 0 {
		return fmt.Errorf("no tunnel groups configured (looked for %v)", appconfig.CandidatePaths())
	}

	panes := 0
	for _, name := range o.GroupNames() {
		raw := o.cfg.Tunnels[name]
		specs, errs := forward.ParseGroup(name, raw)
		for _, perr := range errs {
			slog.Error("invalid forward spec", "error", perr)
		}
		args, err := sshclient.BuildArgs(o.cfg.Connection, specs)
		if err != nil {
			slog.Error("skipping tunnel group", "group", name, "raw", raw, "error", err)
			o.record(events.Event{Session: Name, Group: name, EventType: events.TypeGroupSkipped, Message: err.Error()})
			continue
		}
		command := append([]string{"ssh"}, args...)

		if panes == 0 {
			if err := o.mux.NewSession(ctx, Name, name, command); err != nil {
				return fmt.Errorf("create session: %w", err)
			}
		} else {
			if err := o.mux.SplitPane(ctx, Name, name, command); err != nil {
				// A half-built session must not be left claiming success.
				_ = o.mux.KillSession(ctx, Name)
				return fmt.Errorf("add pane for group %q: %w", name, err)
			}
			if err := o.mux.SelectLayout(ctx, Name, Layout); err != nil {
				_ = o.mux.KillSession(ctx, Name)
				return fmt.Errorf("apply layout: %w", err)
			}
		}
		panes++
		slog.Info("tunnel group started", "group", name, "forwards", len(specs))
		o.record(events.Event{Session: Name, Group: name, EventType: events.TypeGroupStarted})
	}

	if panes == 0 {
		return fmt.Errorf("no tunnel group produced a usable forward spec; session not started")
	}

	// Dead ssh processes should leave an inspectable pane behind rather
	// than silently closing it.
	if err := o.mux.KeepDeadPanes(ctx, Name); err != nil {
		slog.Error("could not enable dead-pane retention", "error", err)
	}

	slog.Info("session started", "session", Name, "panes", panes)
	o.record(events.Event{Session: Name, EventType: events.TypeSessionStarted, Message: fmt.Sprintf("%d panes", panes)})

	if attach {
		return o.Attach(ctx)
	}
	return nil
}

// Stop tears down the whole session, and with it every tunnel process, as
// one atomic unit. Stopping an absent session is a no-op success.
func (o *Orchestrator) Stop(ctx context.Context) error {
	if !o.mux.HasSession(ctx, Name) {
		slog.Info("session not running, nothing to stop", "session", Name)
		return nil
	}
	if err := o.mux.KillSession(ctx, Name); err != nil {
		return err
	}
	slog.Info("session stopped", "session", Name)
	o.record(events.Event{Session: Name, EventType: events.TypeSessionStopped})
	return nil
}

// Restart performs a full stop, fixed delay, start sequence. The delay
// lets the previous ssh processes release their listening ports before
// the new ones bind them. The sequence runs even when the session was
// absent (stop degrades to a no-op).
func (o *Orchestrator) Restart(ctx context.Context) error {
	if err := o.Stop(ctx); err != nil {
		return err
	}
	time.Sleep(o.RestartDelay)
	return o.Start(ctx, false)
}

// Status reports the session state without side effects. For a running
// session it resolves each configured group to its pane, distinguishing
// live, dead (process exited, pane retained) and missing panes.
func (o *Orchestrator) Status(ctx context.Context) (Report, error) {
	rep := Report{Session: Name}
	if !o.mux.HasSession(ctx, Name) {
		return rep, nil
	}
	rep.Running = true

	panes, err := o.mux.ListPanes(ctx, Name)
	if err != nil {
		return Report{}, err
	}
	byTitle := make(map[string]mux.Pane, len(panes))
	for _, p := range panes {
		byTitle[p.Title] = p
	}

	for _, name := range o.GroupNames() {
		specs, _ := forward.ParseGroup(name, o.cfg.Tunnels[name])
		st := model.GroupStatus{Group: name, State: model.PaneMissing, Forwards: specs}
		if p, ok := byTitle[name]; ok {
			st.PID = p.PID
			if p.Dead {
				st.State = model.PaneDead
			} else {
				st.State = model.PaneRunning
			}
		}
		rep.Groups = append(rep.Groups, st)
	}
	return rep, nil
}

// List enumerates the configured groups with their raw spec text and
// parse results, regardless of session state.
func (o *Orchestrator) List() []GroupInfo {
	var out []GroupInfo
	for _, name := range o.GroupNames() {
		raw := o.cfg.Tunnels[name]
		specs, errs := forward.ParseGroup(name, raw)
		info := GroupInfo{Name: name, RawSpec: raw, Forwards: specs}
		for _, err := range errs {
			info.Errors = append(info.Errors, err.Error())
		}
		out = append(out, info)
	}
	return out
}

// Attach blocks the caller by taking over the terminal with the session
// view. Attaching to an absent session is an error.
func (o *Orchestrator) Attach(ctx context.Context) error {
	if !o.mux.HasSession(ctx, Name) {
		return fmt.Errorf("session %q is not running; run 'tunnelmux start' first", Name)
	}
	return o.mux.Attach(Name)
}

func (o *Orchestrator) record(evt events.Event) {
	if o.ev == nil {
		return
	}
	if err := o.ev.Append(evt); err != nil {
		slog.Debug("could not append event", "error", err)
	}
}
