package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"classicine/internal/decisions"
)

func newRebaseCommand(ctx *commandContext) *cobra.Command {
	var fromRoot, toRoot string

	cmd := &cobra.Command{
		Use:   "rebase <playlist.db> --from <oldroot> --to <newroot>",
		Short: "Rewrite the stored path prefix of every decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromRoot == "" || toRoot == "" {
				return errors.New("both --from and --to are required")
			}

			store, err := decisions.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Rebase(cmd.Context(), fromRoot, toRoot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rewrote %d decision(s)\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromRoot, "from", "", "Root prefix to replace")
	cmd.Flags().StringVar(&toRoot, "to", "", "Replacement root prefix")
	return cmd
}
