package mux

import "testing"

func TestParsePaneList(t *testing.T) {
	out := "0\t4242\t0\tweb\tssh\n1\t4250\t1\tproxy\tssh\n"
	panes := parsePaneList(out)
	if len(panes) != 2 {
		t.Fatalf("expected 2 panes, got %d", len(panes))
	}
	if panes[0].Index != 0 || panes[0].PID != 4242 || panes[0].Dead || panes[0].Title != "web" {
		t.Fatalf("unexpected first pane: %+v", panes[0])
	}
	if !panes[1].Dead {
		t.Fatalf("expected second pane dead: %+v", panes[1])
	}
}

func TestParsePaneListSkipsMalformedLines(t *testing.T) {
	panes := parsePaneList("garbage\n0\t1\t0\tweb\tssh\n")
	if len(panes) != 1 || panes[0].Title != "web" {
		t.Fatalf("unexpected panes: %+v", panes)
	}
}

func TestShellJoinPlainWords(t *testing.T) {
	got := ShellJoin([]string{"ssh", "-N", "-L", "localhost:8080:web:80", "deploy@bastion"})
	want := "ssh -N -L localhost:8080:web:80 deploy@bastion"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestShellJoinQuotesUnsafeWords(t *testing.T) {
	got := ShellJoin([]string{"echo", "a b", "it's", ""})
	want := `echo 'a b' 'it'\''s' ''`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
