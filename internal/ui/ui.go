// Package ui implements the interactive dashboard: configured tunnel
// groups on the left, the selected group's forwards on the right, session
// liveness refreshed on a timer, and single-key lifecycle control.
package ui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tunnelmux/internal/appconfig"
	"tunnelmux/internal/events"
	"tunnelmux/internal/model"
	"tunnelmux/internal/mux"
	"tunnelmux/internal/session"
	"tunnelmux/internal/sshclient"
)

type tickMsg time.Time

type statusMsg string

type modelUI struct {
	cfg  appconfig.Config
	orch *session.Orchestrator

	groups   []session.GroupInfo
	filtered []session.GroupInfo
	report   session.Report
	sel      int

	filterInput textinput.Model
	filterMode  bool
	showHelp    bool
	status      string

	width  int
	height int
}

func initialModel(cfg appconfig.Config) modelUI {
	orch := session.New(&cfg, mux.NewTmux(), events.NewStore())

	ti := textinput.New()
	ti.Placeholder = "group name"
	ti.Prompt = "/"
	ti.CharLimit = 64

	m := modelUI{cfg: cfg, orch: orch, filterInput: ti}
	m.groups = orch.List()
	m.applyFilter()
	m.refreshReport()
	m.status = "Ready. s start | x stop | r restart | a attach | q quit"
	return m
}

func (m *modelUI) refreshReport() {
	rep, err := m.orch.Status(context.Background())
	if err != nil {
		m.status = "status error: " + err.Error()
		return
	}
	m.report = rep
}

func (m *modelUI) applyFilter() {
	f := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if f == "" {
		m.filtered = append([]session.GroupInfo(nil), m.groups...)
	} else {
		m.filtered = nil
		for _, g := range m.groups {
			if strings.Contains(strings.ToLower(g.Name), f) {
				m.filtered = append(m.filtered, g)
			}
		}
	}
	if m.sel >= len(m.filtered) {
		m.sel = len(m.filtered) - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
}

func tickCmd(seconds int) tea.Cmd {
	if seconds <= 0 {
		seconds = 3
	}
	return tea.Tick(time.Duration(seconds)*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m modelUI) Init() tea.Cmd {
	return tickCmd(m.cfg.UI.RefreshSeconds)
}

func (m modelUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refreshReport()
		return m, tickCmd(m.cfg.UI.RefreshSeconds)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.filterMode {
			switch msg.String() {
			case "enter", "esc":
				m.filterMode = false
				m.filterInput.Blur()
				m.applyFilter()
				return m, nil
			}
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.sel < len(m.filtered)-1 {
				m.sel++
			}
		case "k", "up":
			if m.sel > 0 {
				m.sel--
			}
		case "/":
			m.filterMode = true
			m.filterInput.Focus()
			m.status = "Filter mode: type and press Enter"
		case "?":
			m.showHelp = !m.showHelp
		case "s":
			if err := m.orch.Start(context.Background(), false); err != nil {
				m.status = "start failed: " + err.Error()
			} else {
				m.status = "session started"
			}
			m.refreshReport()
		case "x":
			if err := m.orch.Stop(context.Background()); err != nil {
				m.status = "stop failed: " + err.Error()
			} else {
				m.status = "session stopped"
			}
			m.refreshReport()
		case "r":
			if err := m.orch.Restart(context.Background()); err != nil {
				m.status = "restart failed: " + err.Error()
			} else {
				m.status = "session restarted"
			}
			m.refreshReport()
		case "a":
			if !m.report.Running {
				m.status = "session not running; press s to start it first"
				break
			}
			cmd := exec.Command("tmux", "attach-session", "-t", "="+session.Name)
			return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
				if err != nil {
					return statusMsg("attach ended: " + err.Error())
				}
				return statusMsg("detached from session")
			})
		case "c":
			cmd := sshclient.ConnectCommand(m.cfg.Connection)
			return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
				if err != nil {
					return statusMsg("ssh exited: " + err.Error())
				}
				return statusMsg("ssh session closed")
			})
		}
	case statusMsg:
		m.status = string(msg)
		m.refreshReport()
	}
	return m, nil
}

func (m modelUI) View() string {
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("tunnelmux dashboard")
	sessState := "absent"
	if m.report.Running {
		sessState = "running"
	}
	subhead := fmt.Sprintf("session=%s state=%s groups=%d shown=%d refresh=%ds",
		session.Name, sessState, len(m.groups), len(m.filtered), m.cfg.UI.RefreshSeconds)

	left := strings.Builder{}
	left.WriteString("j/k to navigate groups.\n")
	states := m.paneStates()
	for i, g := range m.filtered {
		cursor := " "
		if i == m.sel {
			cursor = ">"
		}
		left.WriteString(fmt.Sprintf("%s[%s] %-20s %s\n", cursor, stateMark(states[g.Name]), g.Name, g.RawSpec))
	}
	if len(m.filtered) == 0 {
		left.WriteString("  (no groups matched)\n")
	}

	detail := strings.Builder{}
	if len(m.filtered) > 0 {
		g := m.filtered[m.sel]
		detail.WriteString(fmt.Sprintf("Group: %s\nHost: %s\nState: %s\n", g.Name, m.cfg.Connection.Destination(), states[g.Name]))
		detail.WriteString("Forwards:\n")
		if len(g.Forwards) == 0 {
			detail.WriteString("  (none usable)\n")
		}
		for _, f := range g.Forwards {
			detail.WriteString("  " + f.String() + "\n")
		}
		if len(g.Errors) > 0 {
			detail.WriteString("Spec errors:\n")
			for _, e := range g.Errors {
				detail.WriteString("  " + e + "\n")
			}
		}
	} else {
		detail.WriteString("Pick a group to view its forwards.\n")
	}

	filterLine := "Filter: " + m.filterInput.Value()
	if m.filterMode {
		filterLine = "Filter: " + m.filterInput.View()
	}
	quickHelp := "Keys: s start | x stop | r restart | a attach | c connect | / filter | ? help | q quit"

	main := m.renderMainPanels(left.String(), detail.String())
	status := m.renderPanel("Status", m.status, m.effectiveWidth(), lipgloss.Color("205"))
	help := ""
	if m.showHelp {
		help = m.renderPanel("Help", m.helpBlock(), m.effectiveWidth(), lipgloss.Color("244"))
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		head,
		subhead,
		filterLine,
		quickHelp,
		main,
		help,
		status,
	)
}

// paneStates maps group name to its current pane state, "absent" when the
// session is down.
func (m modelUI) paneStates() map[string]model.PaneState {
	out := map[string]model.PaneState{}
	for _, g := range m.report.Groups {
		out[g.Group] = g.State
	}
	return out
}

func stateMark(st model.PaneState) string {
	switch st {
	case model.PaneRunning:
		return "+"
	case model.PaneDead:
		return "!"
	case model.PaneMissing:
		return "?"
	}
	return " "
}

func (m modelUI) renderMainPanels(groupsPanel, detailsPanel string) string {
	width := m.effectiveWidth()
	if width < 96 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderPanel("Groups", groupsPanel, width, lipgloss.Color("39")),
			m.renderPanel("Details", detailsPanel, width, lipgloss.Color("69")),
		)
	}
	leftWidth := width / 2
	rightWidth := width - leftWidth
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderPanel("Groups", groupsPanel, leftWidth, lipgloss.Color("39")),
		m.renderPanel("Details", detailsPanel, rightWidth, lipgloss.Color("69")),
	)
}

func (m modelUI) helpBlock() string {
	return strings.Join([]string{
		"  Navigation: j/k or arrow keys move selection.",
		"  Filtering: press /, type a group name fragment, then Enter.",
		"  Lifecycle: s starts the session, x stops it, r restarts it.",
		"  Attach: a takes over the terminal with the tmux session view.",
		"  Connect: c opens an interactive ssh session to the tunnel host.",
		"  Marks: + running, ! process exited, ? pane missing.",
		"  Quit: q or Ctrl+C (the session keeps running).",
	}, "\n")
}

func (m modelUI) effectiveWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

func (m modelUI) renderPanel(title, body string, width int, accent lipgloss.Color) string {
	if width < 24 {
		width = 24
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	content := strings.TrimSuffix(body, "\n")
	panel := strings.TrimSpace(header + "\n" + content)
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(panel)
}

// Run launches the dashboard and blocks until the user quits.
func Run() error {
	if err := mux.EnsureTmuxBinary(); err != nil {
		return err
	}
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	p := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
