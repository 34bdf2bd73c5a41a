package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"classicine/internal/decisions"
	"classicine/internal/session"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var fullscreen bool

	cmd := &cobra.Command{
		Use:   "build <playlist.db> [dirs...]",
		Short: "Interactively classify candidates, best-ranked first",
		Long: `Scan the configured directories, rank every unclassified video, and play
the top candidate in VLC. Stop playback to mark it positive, pause to mark
it negative, or close the window to skip it. Each decision retrains the
model and re-ranks what remains.`,
		Args: cobra.MinimumNArgs(1),
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
			if fullscreen {
				cfg.Player.Fullscreen = true
			}

			store, err := decisions.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := session.New(cfg, store, logger)
			s.SetOutput(cmd.OutOrStdout())
			if err := s.Bootstrap(runCtx); err != nil {
				return err
			}
			presenter := &session.VLCPresenter{Options: ctx.playerOptions(logger)}
			return s.Run(runCtx, presenter)
		},
	}

	cmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "Play candidates fullscreen")
	return cmd
}
