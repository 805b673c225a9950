package devserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter builds the relay routes.
func NewRouter(hub *Hub, cfg Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/room/:id", NewWSHandler(hub, cfg, logger).Serve)
	return router
}

// Server runs the hub and its HTTP listener.
type Server struct {
	cfg    Config
	hub    *Hub
	server *http.Server
	log    *zerolog.Logger
}

// NewServer wires a hub to an HTTP server listening on cfg.Addr.
func NewServer(cfg Config, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	hub := NewHub(cfg, logger)
	return &Server{
		cfg: cfg,
		hub: hub,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(hub, cfg, logger),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		log: logger,
	}
}

// Run starts the relay and blocks until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.log.Info().Msg("shutting down relay")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
