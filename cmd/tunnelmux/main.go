// Package main is the entry point for the tunnelmux binary.
//
// tunnelmux supervises a set of named SSH tunnel groups, giving each group
// one pane of a single tmux session. Invoked without arguments it launches
// the interactive dashboard; with a subcommand (start, stop, restart,
// status, list, attach) it runs that operation and exits.
package main

import (
	"fmt"
	"os"

	"tunnelmux/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
