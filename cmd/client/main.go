package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-room/internal/config"
	"github.com/vovakirdan/wirechat-room/internal/log"
)

type rootFlags struct {
	configPath string
	overrides  config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "wirechat-room",
		Short:         "Room client for wirechat: move around, chat, inspect the local cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config file (default: ./wirechat-room.yaml)")
	pf.StringVar(&flags.overrides.BaseURL, "base-url", "", "websocket base address, e.g. wss://host")
	pf.StringVar(&flags.overrides.RoomID, "room", "", "room id")
	pf.StringVar(&flags.overrides.AccessToken, "token", "", "access token")
	pf.StringVar(&flags.overrides.DatabasePath, "db", "", "path to the local chat cache")
	pf.StringVar(&flags.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newPlayCommand(flags),
		newBotCommand(flags),
		newHistoryCommand(flags),
		newTokenCommand(flags),
	)
	return root
}

// load resolves configuration (defaults < file < env < flags) and builds
// the logger for the chosen level.
func (f *rootFlags) load() (config.Config, *zerolog.Logger, error) {
	boot := log.New("warn", nil)
	cfg, path, err := config.Load(boot, f.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg.UpdateFrom(f.overrides)

	logger := log.New(cfg.LogLevel, nil)
	logger.Debug().Str("config_path", path).Msg("config loaded")
	return cfg, logger, nil
}
