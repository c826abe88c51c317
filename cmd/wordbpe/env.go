package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gomlx/go-wordbpe/internal/config"
	"github.com/spf13/cobra"
)

func newEnvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the environment variables and their resolved values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vars := cfg.AsMap()
			for _, name := range slices.Sorted(maps.Keys(vars)) {
				v := vars[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%v\n\t%s\n", v.Name, v.Value, v.Description)
			}
			return nil
		},
	}
}
