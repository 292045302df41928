package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mockchat/internal/app"
	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/terminal"
)

func newRoomsCmd(root *rootOptions) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List configured rooms with their seeded message counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := root.load("warn"); err != nil {
				return err
			}

			bus := core.NewBus(app.BusOptions(root.cfg, root.logger))
			defer bus.Close()

			terminal.NewRenderer(cmd.OutOrStdout(), noColor).Rooms(bus.Rooms(), bus.MessageCounts(), bus.CurrentRoom())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
