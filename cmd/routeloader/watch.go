package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/toyz/routeloader/internal/cli"
)

func watchCmd(a *app) *cobra.Command {
	f := &runFlags{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Rewrite lazy routes whenever a source file changes",
		Long: `Transform the given paths once, then watch them and transform every
changed source file again. Results always go to --out; files are never
rewritten in place while watching.

Examples:
  routeloader watch --out build/src ./src
  routeloader watch --aot --gen-dir compiled --out build/src ./src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.write {
				return fmt.Errorf("watch does not rewrite in place, use --out")
			}
			if f.out == "" {
				return fmt.Errorf("watch needs an --out directory")
			}
			if len(args) == 0 {
				args = []string{"."}
			}

			runner, diagnostics, err := a.newRunner(cmd, f)
			if err != nil {
				return err
			}

			diagnostics.SetShowTime(true)
			watcher := cli.NewWatcher(runner, diagnostics, debounce, f.out)
			return watcher.Watch(cmd.Context(), args)
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().DurationVar(&debounce, "debounce", cli.DefaultDebounce, "Quiet period before a batch of changes is transformed")
	return cmd
}
