// Package devserver is a small relay for the room protocol, used for local
// development and integration tests. It forwards positions and chat between
// participants and keeps a short chat history per room; it does not arbitrate.
package devserver

import "time"

// Config holds relay settings.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	// JWTSecret enables HS256 token validation when non-empty.
	JWTSecret   string
	JWTIssuer   string
	HistorySize int
	// SayRate is chat lines per second per connection; zero disables limiting.
	SayRate  float64
	SayBurst int
}

// Default returns relay defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		HistorySize:       200,
		SayRate:           2,
		SayBurst:          5,
	}
}
