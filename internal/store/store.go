package store

import (
	"context"
	"errors"
)

// Kind distinguishes participant chat from synthesized notices.
type Kind string

const (
	KindChat   Kind = "chat"
	KindSystem Kind = "system"
)

// ErrPrefNotFound is returned when a preference key has no value.
var ErrPrefNotFound = errors.New("preference not found")

// ChatRecord is a persisted chat line. The primary key is
// (RoomID, T, PlayerID): two lines from the same participant in the same
// millisecond collide and the later write wins.
type ChatRecord struct {
	RoomID   string
	T        int64 // epoch milliseconds
	PlayerID string
	Kind     Kind
	Name     string
	Color    string
	Text     string
}

// ChatStore caches room transcripts on the local device.
type ChatStore interface {
	// PutMany upserts records in one transaction.
	PutMany(ctx context.Context, records []ChatRecord) error

	// GetRoom returns the most recent limit records of a room ordered by T
	// ascending. A limit <= 0 returns everything.
	GetRoom(ctx context.Context, roomID string, limit int) ([]ChatRecord, error)

	// ClearRoom deletes every record of a room and reports how many were removed.
	ClearRoom(ctx context.Context, roomID string) (int64, error)
}

// PrefStore keeps small client preferences such as the last used room.
type PrefStore interface {
	// GetPref returns the stored value or ErrPrefNotFound.
	GetPref(ctx context.Context, key string) (string, error)

	// SetPref upserts a value.
	SetPref(ctx context.Context, key, value string) error
}

// Preference keys.
const (
	PrefLastRoom = "last_room"
	PrefLastBase = "last_base_url"
)

// Store aggregates all storage interfaces.
type Store interface {
	ChatStore
	PrefStore

	// Close closes the underlying database connection.
	Close() error
}
