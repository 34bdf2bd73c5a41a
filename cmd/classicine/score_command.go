package main

import (
	"github.com/spf13/cobra"

	"classicine/internal/decisions"
	"classicine/internal/report"
	"classicine/internal/session"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut        bool
		includeDecided bool
		byDir          bool
	)

	cmd := &cobra.Command{
		Use:   "score <playlist.db> [dirs...]",
		Short: "Print the current ranking without playing anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if len(args) > 1 {
				cfg.Scan.Dirs = args[1:]
			}

			store, err := decisions.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			s := session.New(cfg, store, logger)
			if err := s.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			ranked, err := s.Score(cmd.Context(), includeDecided)
			if err != nil {
				return err
			}

			rep := report.Build(ranked, s.Ranker().Classifiers())
			out := cmd.OutOrStdout()
			if byDir {
				agg := rep.Aggregate()
				if jsonOut {
					return agg.RenderJSON(out)
				}
				return agg.RenderTable(out)
			}
			if jsonOut {
				return rep.RenderJSON(out)
			}
			return rep.RenderTable(out)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON lines instead of a table")
	cmd.Flags().BoolVar(&includeDecided, "include-decided", false, "Also score already-classified files")
	cmd.Flags().BoolVar(&byDir, "by-dir", false, "Aggregate scores per directory")
	return cmd
}
