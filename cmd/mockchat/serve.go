package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mockchat/internal/app"
	"github.com/vovakirdan/mockchat/internal/session"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local view server (JSON API and websocket feed)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := root.load(""); err != nil {
				return err
			}
			if addr != "" {
				root.cfg.Addr = addr
			}

			application := app.New(root.cfg, root.logger, session.LogNotifier(root.logger))
			root.logger.Info().Str("addr", root.cfg.Addr).Msg("starting mockchat view server")
			if err := application.Run(cmd.Context()); err != nil {
				root.logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			root.logger.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address override")
	return cmd
}
