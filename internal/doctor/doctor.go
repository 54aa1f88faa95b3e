// Package doctor runs local diagnostics over the environment and the
// tunnel configuration and reports actionable issues.
package doctor

import (
	"fmt"
	"sort"

	"tunnelmux/internal/appconfig"
	"tunnelmux/internal/forward"
	"tunnelmux/internal/model"
	"tunnelmux/internal/mux"
	"tunnelmux/internal/sshclient"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// Run executes local diagnostics for tunnelmux operations.
func Run(cfg *appconfig.Config) Report {
	var issues []Issue

	if err := sshclient.EnsureSSHBinary(); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "ssh-binary",
			Target:         "PATH",
			Message:        err.Error(),
			Recommendation: "install the OpenSSH client and ensure `ssh` is on PATH",
		})
	}
	if err := mux.EnsureTmuxBinary(); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "tmux-binary",
			Target:         "PATH",
			Message:        err.Error(),
			Recommendation: "install tmux and ensure it is on PATH",
		})
	}

	if len(cfg.Tunnels) == 0 {
		issues = append(issues, Issue{
			Severity:       SeverityLow,
			Check:          "no-tunnel-groups",
			Target:         configTarget(cfg),
			Message:        "no tunnel groups configured",
			Recommendation: "add a tunnels: mapping to config.yaml",
		})
	}

	issues = append(issues, specIssues(cfg)...)
	issues = append(issues, duplicateListenIssues(cfg)...)

	return Report{Issues: issues}
}

func configTarget(cfg *appconfig.Config) string {
	if cfg.ConfigFile != "" {
		return cfg.ConfigFile
	}
	return "built-in defaults"
}

// specIssues surfaces every forward-spec parse error and flags groups
// that would be skipped entirely at start.
func specIssues(cfg *appconfig.Config) []Issue {
	var issues []Issue
	names := make([]string, 0, len(cfg.Tunnels))
	for name := range cfg.Tunnels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		specs, errs := forward.ParseGroup(name, cfg.Tunnels[name])
		for _, err := range errs {
			issues = append(issues, Issue{
				Severity:       SeverityMedium,
				Check:          "forward-spec",
				Target:         name,
				Message:        err.Error(),
				Recommendation: "fix the spec token in config.yaml",
			})
		}
		if len(specs) == 0 {
			issues = append(issues, Issue{
				Severity:       SeverityHigh,
				Check:          "group-unusable",
				Target:         name,
				Message:        "group has no usable forward specs and will be skipped at start",
				Recommendation: "repair or remove the group",
			})
		}
	}
	return issues
}

// duplicateListenIssues flags local listening ports claimed by more than
// one forward. The second ssh to bind loses, and with
// ExitOnForwardFailure its whole pane dies.
func duplicateListenIssues(cfg *appconfig.Config) []Issue {
	owners := map[int][]string{}
	for name, raw := range cfg.Tunnels {
		specs, _ := forward.ParseGroup(name, raw)
		for _, f := range specs {
			if f.Kind == model.ForwardLocal || f.Kind == model.ForwardDynamic {
				owners[f.LocalPort] = append(owners[f.LocalPort], name)
			}
		}
	}

	var ports []int
	for port, groups := range owners {
		if len(groups) > 1 {
			ports = append(ports, port)
		}
	}
	sort.Ints(ports)

	var issues []Issue
	for _, port := range ports {
		groups := owners[port]
		sort.Strings(groups)
		issues = append(issues, Issue{
			Severity:       SeverityMedium,
			Check:          "duplicate-local-port",
			Target:         fmt.Sprintf("port %d", port),
			Message:        fmt.Sprintf("local port %d is claimed by groups %v", port, groups),
			Recommendation: "give each forward a distinct local port",
		})
	}
	return issues
}
