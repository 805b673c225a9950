package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-room/internal/app"
	"github.com/vovakirdan/wirechat-room/internal/core"
)

func newBotCommand(flags *rootFlags) *cobra.Command {
	var (
		wander   string
		leg      time.Duration
		duration time.Duration
		noInput  bool
	)

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Join headless: chat from stdin, print the transcript",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pattern, err := app.ParseWander(wander)
			if err != nil {
				return err
			}
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			a, err := app.New(cfg, logger, func(m core.ChatMessage) {
				app.PrintMessage(out, m)
			})
			if err != nil {
				return err
			}

			opts := app.HeadlessOptions{Wander: pattern, Leg: leg, Duration: duration}
			if !noInput {
				opts.Input = cmd.InOrStdin()
			}
			return a.RunHeadless(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&wander, "wander", "", "directions to walk in turn, e.g. right,down,left,up")
	cmd.Flags().DurationVar(&leg, "leg", time.Second, "how long each wander direction is held")
	cmd.Flags().DurationVar(&duration, "duration", 0, "leave after this long (0 = until interrupted)")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "do not read chat lines from stdin")
	return cmd
}
