package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-room/internal/mask"
	"github.com/vovakirdan/wirechat-room/internal/store"
	"github.com/vovakirdan/wirechat-room/internal/store/sqlite"
)

func newHistoryCommand(flags *rootFlags) *cobra.Command {
	var (
		limit int
		clear bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear the cached transcript of a room",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := flags.load()
			if err != nil {
				return err
			}
			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open chat cache: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if clear {
				n, err := st.ClearRoom(ctx, cfg.RoomID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "removed %s cached messages from %s\n", humanize.Comma(n), cfg.RoomID)
				return nil
			}

			records, err := st.GetRoom(ctx, cfg.RoomID, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(out, "no cached messages for %s\n", cfg.RoomID)
				return nil
			}
			for _, r := range records {
				fmt.Fprintln(out, formatRecord(r, time.Now()))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "most recent messages to show (0 = all)")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete the room's cached messages")
	return cmd
}

func formatRecord(r store.ChatRecord, now time.Time) string {
	when := humanize.RelTime(time.UnixMilli(r.T), now, "ago", "from now")
	if r.Kind == store.KindSystem {
		return fmt.Sprintf("%-16s * %s", when, mask.InText(r.Text))
	}
	return fmt.Sprintf("%-16s %s: %s", when, mask.Display(r.Name), mask.InText(r.Text))
}
