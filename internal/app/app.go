// Package app wires configuration, storage, identity and transport into a
// room engine and runs it under a window or headless host.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-room/internal/config"
	"github.com/vovakirdan/wirechat-room/internal/core"
	"github.com/vovakirdan/wirechat-room/internal/session"
	"github.com/vovakirdan/wirechat-room/internal/store"
	"github.com/vovakirdan/wirechat-room/internal/store/sqlite"
	"github.com/vovakirdan/wirechat-room/internal/transport/ws"
	"github.com/vovakirdan/wirechat-room/internal/ui"
)

// App owns the engine and the resources behind it.
type App struct {
	cfg     config.Config
	engine  *core.Engine
	store   store.Store
	session *session.Session
	log     *zerolog.Logger
}

// New opens the local store and builds the engine. Missing room and base
// address fall back to the last values used on this device. onMessage, if
// set, sees every new transcript row on the host goroutine.
func New(cfg config.Config, logger *zerolog.Logger, onMessage func(core.ChatMessage)) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Debug().Str("db_path", cfg.DatabasePath).Msg("chat cache opened")

	cfg = withRememberedPrefs(context.Background(), cfg, st, logger)

	sess := session.New(session.WithTokenEmail(session.Identity{
		AccessToken:  cfg.AccessToken,
		DisplayEmail: cfg.DisplayEmail,
	}))

	engine := core.New(core.Options{
		BaseURL:      cfg.BaseURL,
		World:        core.Size{W: cfg.WorldWidth, H: cfg.WorldHeight},
		Speed:        cfg.MoveSpeed,
		HistoryLimit: cfg.HistoryLimit,
		DialTimeout:  cfg.DialTimeout,
		OnMessage:    onMessage,
	}, ws.NewDialer(logger, 0), st, sess, logger)
	engine.SetRoom(cfg.RoomID)

	return &App{
		cfg:     cfg,
		engine:  engine,
		store:   st,
		session: sess,
		log:     logger,
	}, nil
}

func withRememberedPrefs(ctx context.Context, cfg config.Config, prefs store.PrefStore, logger *zerolog.Logger) config.Config {
	fill := func(target *string, key string) {
		if *target != "" {
			return
		}
		v, err := prefs.GetPref(ctx, key)
		switch {
		case err == nil:
			*target = v
			logger.Debug().Str("key", key).Msg("using remembered preference")
		case !errors.Is(err, store.ErrPrefNotFound):
			logger.Warn().Err(err).Str("key", key).Msg("read preference")
		}
	}
	fill(&cfg.RoomID, store.PrefLastRoom)
	fill(&cfg.BaseURL, store.PrefLastBase)
	return cfg
}

// Engine returns the room engine.
func (a *App) Engine() *core.Engine { return a.engine }

// Session returns the identity context.
func (a *App) Session() *session.Session { return a.session }

// Config returns the effective configuration.
func (a *App) Config() config.Config { return a.cfg }

// RunWindow hosts the engine in an ebiten window until it closes.
func (a *App) RunWindow(ctx context.Context) error {
	defer a.Close()
	return ui.Run(ctx, a.engine, a.cfg.RoomID, a.log)
}

// Close disconnects, flushes the cache writer and closes the store.
func (a *App) Close() {
	if a.engine != nil {
		a.engine.Close()
		a.engine = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		}
		a.store = nil
	}
}
