package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vovakirdan/wirechat-room/internal/devserver"
	"github.com/vovakirdan/wirechat-room/internal/log"
)

func main() {
	cfg := devserver.Default()
	var (
		logLevel string
		mint     string
	)

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.DurationVar(&cfg.ReadHeaderTimeout, "read-header-timeout", cfg.ReadHeaderTimeout, "HTTP read header timeout")
	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", os.Getenv("WIRECHAT_JWT_SECRET"), "HS256 secret; empty accepts guests")
	flag.StringVar(&cfg.JWTIssuer, "jwt-issuer", cfg.JWTIssuer, "required token issuer")
	flag.IntVar(&cfg.HistorySize, "history", cfg.HistorySize, "chat lines kept per room")
	flag.Float64Var(&cfg.SayRate, "say-rate", cfg.SayRate, "chat lines per second per connection (0 = unlimited)")
	flag.IntVar(&cfg.SayBurst, "say-burst", cfg.SayBurst, "chat burst per connection")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.StringVar(&mint, "mint", "", "print a token for this email and exit (needs -jwt-secret)")
	flag.Parse()

	logger := log.New(logLevel, nil)

	if mint != "" {
		if cfg.JWTSecret == "" {
			logger.Fatal().Msg("-mint needs -jwt-secret")
		}
		token, err := devserver.GenerateToken([]byte(cfg.JWTSecret), cfg.JWTIssuer, mint, mint, 24*time.Hour)
		if err != nil {
			logger.Fatal().Err(err).Msg("mint token")
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", cfg.Addr).Bool("auth", cfg.JWTSecret != "").Msg("starting room relay")
	if err := devserver.NewServer(cfg, logger).Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("relay exited with error")
	}
	logger.Info().Msg("relay stopped")
}
