package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirechat-room/internal/store"
)

// Schema creates the tables used by the client cache.
const Schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	room_id   TEXT    NOT NULL,
	t         INTEGER NOT NULL,
	player_id TEXT    NOT NULL DEFAULT '',
	kind      TEXT    NOT NULL DEFAULT 'chat',
	name      TEXT    NOT NULL DEFAULT '',
	color     TEXT    NOT NULL DEFAULT '',
	text      TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (room_id, t, player_id)
);

CREATE TABLE IF NOT EXISTS prefs (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// New opens (or creates) the database at dbPath and applies Schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema without migrations.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate applies Schema.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== ChatStore implementation ====

// PutMany upserts records; on a key collision the later write wins.
func (s *SQLiteStore) PutMany(ctx context.Context, records []store.ChatRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chat_messages (room_id, t, player_id, kind, name, color, text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (room_id, t, player_id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			color = excluded.color,
			text = excluded.text
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		kind := r.Kind
		if kind == "" {
			kind = store.KindChat
		}
		if _, err := stmt.ExecContext(ctx, r.RoomID, r.T, r.PlayerID, string(kind), r.Name, r.Color, r.Text); err != nil {
			return fmt.Errorf("upsert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRoom returns the latest limit records of a room, oldest first.
func (s *SQLiteStore) GetRoom(ctx context.Context, roomID string, limit int) ([]store.ChatRecord, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	query := `
		SELECT room_id, t, player_id, kind, name, color, text
		FROM chat_messages
		WHERE room_id = ?
		ORDER BY t DESC, player_id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var records []store.ChatRecord
	for rows.Next() {
		var r store.ChatRecord
		var kind string
		if err := rows.Scan(&r.RoomID, &r.T, &r.PlayerID, &kind, &r.Name, &r.Color, &r.Text); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		r.Kind = store.Kind(kind)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Reverse to chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// ClearRoom deletes all records of a room.
func (s *SQLiteStore) ClearRoom(ctx context.Context, roomID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE room_id = ?`, roomID)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ==== PrefStore implementation ====

// GetPref returns a stored preference value.
func (s *SQLiteStore) GetPref(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrPrefNotFound
		}
		return "", fmt.Errorf("query pref: %w", err)
	}
	return value, nil
}

// SetPref upserts a preference value.
func (s *SQLiteStore) SetPref(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("upsert pref: %w", err)
	}
	return nil
}
