package ui

import (
	"strings"
	"testing"

	"tunnelmux/internal/appconfig"
	"tunnelmux/internal/model"
	"tunnelmux/internal/session"
)

func testModel() modelUI {
	cfg := appconfig.Config{
		Connection: model.Connection{Host: "bastion", Port: 22, User: "deploy"},
		Tunnels: map[string]string{
			"web":   "L:8080:web:80",
			"proxy": "D:1080",
		},
		UI: appconfig.UIConfig{RefreshSeconds: 3},
	}
	m := modelUI{cfg: cfg}
	m.groups = []session.GroupInfo{
		{Name: "proxy", RawSpec: "D:1080", Forwards: []model.ForwardSpec{{Kind: model.ForwardDynamic, LocalPort: 1080}}},
		{Name: "web", RawSpec: "L:8080:web:80", Forwards: []model.ForwardSpec{{Kind: model.ForwardLocal, LocalPort: 8080, RemoteHost: "web", RemotePort: 80}}},
	}
	m.applyFilter()
	return m
}

func TestApplyFilterNarrowsGroups(t *testing.T) {
	m := testModel()
	if len(m.filtered) != 2 {
		t.Fatalf("expected all groups with empty filter, got %d", len(m.filtered))
	}
	m.filterInput.SetValue("pro")
	m.applyFilter()
	if len(m.filtered) != 1 || m.filtered[0].Name != "proxy" {
		t.Fatalf("unexpected filter result: %+v", m.filtered)
	}
	// Selection is clamped when the filter shrinks the list.
	m.sel = 5
	m.applyFilter()
	if m.sel != 0 {
		t.Fatalf("expected clamped selection, got %d", m.sel)
	}
}

func TestStateMarks(t *testing.T) {
	if stateMark(model.PaneRunning) != "+" || stateMark(model.PaneDead) != "!" || stateMark(model.PaneMissing) != "?" {
		t.Fatal("unexpected state marks")
	}
}

func TestViewRendersGroupsAndForwards(t *testing.T) {
	m := testModel()
	m.width = 120
	out := m.View()
	for _, want := range []string{"tunnelmux dashboard", "proxy", "web", "socks 1080"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view output", want)
		}
	}
}
