package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-room/internal/mask"
	"github.com/vovakirdan/wirechat-room/internal/session"
)

func newTokenCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Show the unverified contents of the configured access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := flags.load()
			if err != nil {
				return err
			}
			info, err := session.Inspect(cfg.AccessToken)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			now := time.Now()
			fmt.Fprintf(out, "algorithm: %s\n", info.Algorithm)
			if info.KeyID != "" {
				fmt.Fprintf(out, "key id:    %s\n", info.KeyID)
			}
			fmt.Fprintf(out, "subject:   %s\n", info.Subject)
			if info.Email != "" {
				fmt.Fprintf(out, "email:     %s\n", mask.Display(info.Email))
			}
			switch {
			case info.ExpiresAt.IsZero():
				fmt.Fprintln(out, "expires:   never")
			case info.Expired(now):
				fmt.Fprintf(out, "expired:   %s\n", humanize.RelTime(info.ExpiresAt, now, "ago", "from now"))
			default:
				fmt.Fprintf(out, "expires:   %s\n", humanize.RelTime(info.ExpiresAt, now, "ago", "from now"))
			}
			return nil
		},
	}
}
