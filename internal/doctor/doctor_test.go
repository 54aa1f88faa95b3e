package doctor

import (
	"testing"

	"tunnelmux/internal/appconfig"
	"tunnelmux/internal/model"
)

func testConfig(tunnels map[string]string) *appconfig.Config {
	return &appconfig.Config{
		Connection: model.Connection{Host: "bastion", Port: 22},
		Tunnels:    tunnels,
	}
}

func hasCheck(rep Report, check string) bool {
	for _, issue := range rep.Issues {
		if issue.Check == check {
			return true
		}
	}
	return false
}

func TestRunFlagsDuplicateLocalPorts(t *testing.T) {
	rep := Run(testConfig(map[string]string{
		"web":   "L:8080:web:80",
		"proxy": "D:8080",
	}))
	if !hasCheck(rep, "duplicate-local-port") {
		t.Fatalf("expected duplicate-local-port issue, got %+v", rep.Issues)
	}
}

func TestRunFlagsUnusableGroup(t *testing.T) {
	rep := Run(testConfig(map[string]string{"broken": "X:1 D:bogus"}))
	if !hasCheck(rep, "group-unusable") {
		t.Fatalf("expected group-unusable issue, got %+v", rep.Issues)
	}
	if !hasCheck(rep, "forward-spec") {
		t.Fatalf("expected forward-spec issues, got %+v", rep.Issues)
	}
}

func TestRunFlagsEmptyConfig(t *testing.T) {
	rep := Run(testConfig(map[string]string{}))
	if !hasCheck(rep, "no-tunnel-groups") {
		t.Fatalf("expected no-tunnel-groups issue, got %+v", rep.Issues)
	}
}

func TestRunCleanConfigHasNoConfigIssues(t *testing.T) {
	rep := Run(testConfig(map[string]string{
		"web":   "L:8080:web:80",
		"proxy": "D:1080",
	}))
	for _, check := range []string{"duplicate-local-port", "group-unusable", "forward-spec", "no-tunnel-groups"} {
		if hasCheck(rep, check) {
			t.Fatalf("unexpected %s issue: %+v", check, rep.Issues)
		}
	}
}
