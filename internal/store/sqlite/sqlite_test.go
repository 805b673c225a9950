package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/wirechat-room/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutManyAndGetRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []store.ChatRecord{
		{RoomID: "r1", T: 30, PlayerID: "b", Name: "Bob", Text: "third"},
		{RoomID: "r1", T: 10, PlayerID: "a", Name: "Ann", Text: "first"},
		{RoomID: "r1", T: 20, PlayerID: "a", Name: "Ann", Text: "second"},
		{RoomID: "r2", T: 15, PlayerID: "c", Name: "Cy", Text: "elsewhere"},
	}
	if err := s.PutMany(ctx, records); err != nil {
		t.Fatalf("PutMany failed: %v", err)
	}

	tests := []struct {
		name  string
		room  string
		limit int
		want  []string
	}{
		{name: "all ascending", room: "r1", limit: 0, want: []string{"first", "second", "third"}},
		{name: "limit keeps latest", room: "r1", limit: 2, want: []string{"second", "third"}},
		{name: "other room", room: "r2", limit: 10, want: []string{"elsewhere"}},
		{name: "unknown room", room: "nope", limit: 10, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetRoom(ctx, tt.room, tt.limit)
			if err != nil {
				t.Fatalf("GetRoom failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d records, got %d: %+v", len(tt.want), len(got), got)
			}
			for i, r := range got {
				if r.Text != tt.want[i] {
					t.Errorf("index %d: expected %q, got %q", i, tt.want[i], r.Text)
				}
				if r.Kind != store.KindChat {
					t.Errorf("index %d: expected default kind chat, got %q", i, r.Kind)
				}
			}
		})
	}
}

func TestPutManySameKeyLaterWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := store.ChatRecord{RoomID: "r", T: 5, PlayerID: "p", Text: "draft"}
	second := store.ChatRecord{RoomID: "r", T: 5, PlayerID: "p", Text: "final"}
	if err := s.PutMany(ctx, []store.ChatRecord{first}); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := s.PutMany(ctx, []store.ChatRecord{second}); err != nil {
		t.Fatalf("put second: %v", err)
	}

	got, err := s.GetRoom(ctx, "r", 0)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if len(got) != 1 || got[0].Text != "final" {
		t.Fatalf("expected single record with later text, got %+v", got)
	}
}

func TestClearRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.PutMany(ctx, []store.ChatRecord{
		{RoomID: "r", T: 1, Text: "a"},
		{RoomID: "r", T: 2, Text: "b"},
		{RoomID: "keep", T: 3, Text: "c"},
	})

	n, err := s.ClearRoom(ctx, "r")
	if err != nil {
		t.Fatalf("ClearRoom: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	if left, _ := s.GetRoom(ctx, "keep", 0); len(left) != 1 {
		t.Fatalf("other room affected: %+v", left)
	}
}

func TestPrefs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPref(ctx, store.PrefLastRoom); !errors.Is(err, store.ErrPrefNotFound) {
		t.Fatalf("expected ErrPrefNotFound, got %v", err)
	}
	if err := s.SetPref(ctx, store.PrefLastRoom, "room-1"); err != nil {
		t.Fatalf("SetPref: %v", err)
	}
	if err := s.SetPref(ctx, store.PrefLastRoom, "room-2"); err != nil {
		t.Fatalf("SetPref again: %v", err)
	}
	got, err := s.GetPref(ctx, store.PrefLastRoom)
	if err != nil || got != "room-2" {
		t.Fatalf("GetPref = %q, %v", got, err)
	}
}

func TestNewCreatesFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.PutMany(context.Background(), []store.ChatRecord{{RoomID: "r", T: 1, Text: "x"}}); err != nil {
		t.Fatalf("PutMany on file db: %v", err)
	}
}
