// Package main is the treestate inspection command: it prints status
// snapshots and operation progress for a repository.
package main

import (
	"context"
	"fmt"
	"os"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/craftlabs/treestate/engine"
	"github.com/craftlabs/treestate/internal/config"
	"github.com/craftlabs/treestate/internal/log"
)

var version = "dev"

func main() {
	cmd := &urfavecli.Command{
		Name:    "treestate",
		Usage:   "Inspect working-tree status and in-progress operation state",
		Version: version,

		Flags: globalFlags(),

		Commands: []*urfavecli.Command{
			statusCommand(),
			progressCommand(),
			watchCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "repo",
			Aliases: []string{"C"},
			Usage:   "Repository path (defaults to the current directory)",
			Value:   ".",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to YAML options file",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.BoolFlag{
			Name:  "json",
			Usage: "Force JSON output even on a terminal",
		},
	}
}

// setupEngine loads options and wires the engine for the selected repository.
func setupEngine(cmd *urfavecli.Command) (*engine.Engine, *config.Options, error) {
	if debugLog := cmd.String("debug-log"); debugLog != "" {
		if err := log.SetFile(debugLog); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log file %q: %v\n", debugLog, err)
		}
	}

	opts, err := config.Load(cmd.String("config-file"))
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.Open(cmd.String("repo"), opts)
	if err != nil {
		return nil, nil, err
	}
	return eng, opts, nil
}
