package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/toyz/routeloader/internal/codegen"
)

func codegensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codegens",
		Short: "List the available code generators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := codegen.NewRegistry()
			deprecated := registry.Deprecated()
			out := cmd.OutOrStdout()

			for _, name := range registry.Names() {
				if _, ok := deprecated[name]; ok {
					fmt.Fprintf(out, "%s %s\n", name, color.YellowString("(deprecated)"))
					continue
				}
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
