package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"classicine/internal/decisions"
)

func newListCommand(ctx *commandContext, label string) *cobra.Command {
	return &cobra.Command{
		Use:   label + " <playlist.db>",
		Short: "List paths decided " + label,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := decisions.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rec := range records {
				if string(rec.Label) != label {
					continue
				}
				if _, err := fmt.Fprintln(out, rec.Path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
