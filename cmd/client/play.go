package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-room/internal/app"
)

func newPlayCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Open the room in a window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			a, err := app.New(cfg, logger, nil)
			if err != nil {
				return err
			}
			return a.RunWindow(cmd.Context())
		},
	}
}
