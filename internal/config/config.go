package config

import "time"

// Config holds client configuration values.
type Config struct {
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	RoomID       string        `mapstructure:"room_id" yaml:"room_id"`
	AccessToken  string        `mapstructure:"access_token" yaml:"access_token"`
	DisplayEmail string        `mapstructure:"display_email" yaml:"display_email"`
	DatabasePath string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	HistoryLimit int           `mapstructure:"history_limit" yaml:"history_limit"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	WorldWidth   float64       `mapstructure:"world_width" yaml:"world_width"`
	WorldHeight  float64       `mapstructure:"world_height" yaml:"world_height"`
	MoveSpeed    float64       `mapstructure:"move_speed" yaml:"move_speed"`
}

// Default returns configuration with reasonable starter defaults.
// BaseURL is intentionally empty: the socket endpoint must be supplied.
func Default() Config {
	return Config{
		RoomID:       "room-1",
		DatabasePath: "wirechat-room.db",
		LogLevel:     "info",
		HistoryLimit: 200,
		DialTimeout:  10 * time.Second,
		WorldWidth:   800,
		WorldHeight:  600,
		MoveSpeed:    180,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.RoomID != "" {
		c.RoomID = other.RoomID
	}
	if other.AccessToken != "" {
		c.AccessToken = other.AccessToken
	}
	if other.DisplayEmail != "" {
		c.DisplayEmail = other.DisplayEmail
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.DialTimeout != 0 {
		c.DialTimeout = other.DialTimeout
	}
	if other.WorldWidth != 0 {
		c.WorldWidth = other.WorldWidth
	}
	if other.WorldHeight != 0 {
		c.WorldHeight = other.WorldHeight
	}
	if other.MoveSpeed != 0 {
		c.MoveSpeed = other.MoveSpeed
	}
}
