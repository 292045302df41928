package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mockchat/internal/app"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var (
		user    string
		room    string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal against the simulated channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// logs would interleave with the chat view
			if err := root.load("error"); err != nil {
				return err
			}
			if room != "" {
				root.cfg.DefaultRoom = room
				if err := root.cfg.Validate(); err != nil {
					return err
				}
			}

			application := app.New(root.cfg, root.logger)
			return application.RunTerminal(cmd.Context(), os.Stdin, os.Stdout, user, noColor)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "username (prompted when empty)")
	cmd.Flags().StringVar(&room, "room", "", "room to start in")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
