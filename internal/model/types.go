package model

import "fmt"

// ForwardKind selects which shape of tunnel a forward spec describes.
type ForwardKind string

const (
	// ForwardLocal forwards a local listening port to a fixed remote endpoint.
	ForwardLocal ForwardKind = "local"
	// ForwardDynamic opens a local SOCKS proxy; destinations are chosen by
	// the connecting application.
	ForwardDynamic ForwardKind = "socks"
	// ForwardRemote forwards a remote listening port back to a local endpoint.
	ForwardRemote ForwardKind = "remote"
)

// ForwardSpec is one endpoint-to-endpoint tunneling instruction.
//
// Which fields are meaningful depends on Kind:
//   - ForwardLocal:   LocalPort, RemoteHost, RemotePort
//   - ForwardDynamic: LocalPort
//   - ForwardRemote:  RemotePort, LocalHost, LocalPort
type ForwardSpec struct {
	Kind       ForwardKind `json:"kind"`
	LocalPort  int         `json:"local_port"`
	LocalHost  string      `json:"local_host,omitempty"`
	RemoteHost string      `json:"remote_host,omitempty"`
	RemotePort int         `json:"remote_port,omitempty"`
}

// String renders the spec the way it appears in status output.
func (f ForwardSpec) String() string {
	switch f.Kind {
	case ForwardLocal:
		return fmt.Sprintf("local %d -> %s:%d", f.LocalPort, f.RemoteHost, f.RemotePort)
	case ForwardDynamic:
		return fmt.Sprintf("socks %d", f.LocalPort)
	case ForwardRemote:
		return fmt.Sprintf("remote %d -> %s:%d", f.RemotePort, f.LocalHost, f.LocalPort)
	}
	return "unknown"
}

// Connection holds the settings shared by every tunnel group's ssh invocation.
// It is populated once at startup and never mutated afterwards.
type Connection struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	User string `yaml:"user" json:"user"`
	Term string `yaml:"term" json:"term"`
}

// Destination returns the user@host argument for ssh. A missing user falls
// back to whatever the ssh client resolves on its own.
func (c Connection) Destination() string {
	if c.User == "" {
		return c.Host
	}
	return c.User + "@" + c.Host
}

// Group is one named bundle of forward specs executed as a single
// ssh invocation inside one pane.
type Group struct {
	Name    string `json:"name"`
	RawSpec string `json:"raw_spec"`
}

// PaneState describes what a configured group's pane looks like right now.
type PaneState string

const (
	// PaneRunning means the pane exists and its ssh process is alive.
	PaneRunning PaneState = "running"
	// PaneDead means the pane exists but its ssh process has exited
	// (visible because the session keeps dead panes around).
	PaneDead PaneState = "dead"
	// PaneMissing means the session has no pane for the group at all.
	PaneMissing PaneState = "missing"
)

// GroupStatus is one row of the status report: a configured group, the
// state of its pane, and the forwards it declares.
type GroupStatus struct {
	Group    string        `json:"group"`
	State    PaneState     `json:"state"`
	PID      int           `json:"pid,omitempty"`
	Forwards []ForwardSpec `json:"forwards"`
}
