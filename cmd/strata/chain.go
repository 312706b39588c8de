package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"strata/internal/chain"
	"strata/internal/diagfmt"
	"strata/internal/manifest"
)

var chainCmd = &cobra.Command{
	Use:   "chain <scenario.toml> <type-expr>",
	Short: "Print the receiver chain a type walks through",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := manifest.Load(args[0])
		if err != nil {
			return reportLoadError(cmd, err)
		}
		subject, err := sc.ParseTypeExpr(args[1])
		if err != nil {
			return err
		}

		builder := chain.NewBuilder(sc.Registry, sc.MaxDepth)
		ch, err := builder.Chain(subject)
		if err != nil {
			var cycle *chain.CycleError
			if errors.As(err, &cycle) {
				return fmt.Errorf("chain of %s cycles back to %s",
					args[1], diagfmt.Label(sc.Types, sc.Strings, cycle.Repeated))
			}
			return err
		}

		out := cmd.OutOrStdout()
		for i, entry := range ch.Entries {
			fmt.Fprintf(out, "%d: %s\n", i, diagfmt.Label(sc.Types, sc.Strings, entry))
		}
		return nil
	},
}
