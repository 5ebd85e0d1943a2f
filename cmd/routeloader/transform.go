package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/routeloader/internal/errors"
)

func transformCmd(a *app) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "transform [paths...]",
		Short: "Rewrite lazy route declarations",
		Long: `Rewrite every loadChildren declaration found in the given files and
directories. Directories are walked recursively, skipping node_modules,
hidden directories and declaration files.

Without --write or --out the transformed sources are printed to stdout.

Examples:
  routeloader transform src/app/app.routes.ts
  routeloader transform --write ./src/...
  routeloader transform --aot --gen-dir compiled --out dist/src ./src
  routeloader transform --loader async-import --syntax-tree ./src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			runner, diagnostics, err := a.newRunner(cmd, f)
			if err != nil {
				return err
			}

			summary, err := runner.Run(cmd.Context(), args)
			if f.write || f.out != "" {
				diagnostics.Summary("Transform Complete", summary.Stats())
			}

			var failures *errors.MultipleErrors
			if stderrors.As(err, &failures) {
				return fmt.Errorf("%d of %d files failed", failures.Count(), summary.FilesScanned)
			}
			return err
		},
	}

	f.register(cmd.Flags())
	return cmd
}
