package main

import (
	"context"
	"fmt"
	"os"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/craftlabs/treestate/gitdir"
	"github.com/craftlabs/treestate/watch"
)

func statusCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "status",
		Usage: "Print a working-tree status snapshot",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			eng, _, err := setupEngine(cmd)
			if err != nil {
				return err
			}
			result, err := eng.GetStatus(ctx)
			if err != nil {
				return err
			}
			return renderStatus(os.Stdout, result, prettyOutput(cmd))
		},
	}
}

func progressCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "progress",
		Usage: "Print multi-commit operation progress, if any",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			eng, _, err := setupEngine(cmd)
			if err != nil {
				return err
			}
			progress, err := eng.GetOperationProgress(ctx)
			if err != nil {
				return err
			}
			return renderProgress(os.Stdout, progress, prettyOutput(cmd))
		},
	}
}

func watchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "watch",
		Usage: "Watch the repository and print a snapshot on every change",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			eng, opts, err := setupEngine(cmd)
			if err != nil {
				return err
			}
			dir, err := gitdir.Open(cmd.String("repo"))
			if err != nil {
				return err
			}

			watcher := watch.New(eng, dir, opts.WatchDebounce())
			snapshots, err := watcher.Start(ctx)
			if err != nil {
				return err
			}
			defer watcher.Stop()

			for snapshot := range snapshots {
				if err := renderStatus(os.Stdout, snapshot, prettyOutput(cmd)); err != nil {
					return err
				}
				fmt.Println()
			}
			return nil
		},
	}
}

// prettyOutput picks the human layout only for interactive stdout.
func prettyOutput(cmd *urfavecli.Command) bool {
	return !cmd.Bool("json") && stdoutIsTerminal()
}
