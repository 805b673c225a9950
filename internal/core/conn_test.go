package core

import (
	"errors"
	"testing"
)

func TestNormalizeBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "example.com", want: "wss://example.com"},
		{in: "https://x/y/", want: "wss://x/y"},
		{in: "http://x/y/", want: "ws://x/y"},
		{in: "wss://a.b", want: "wss://a.b"},
		{in: "ws://localhost:8080/", want: "ws://localhost:8080"},
		{in: "  host:9000  ", want: "wss://host:9000"},
		{in: "   ", want: ""},
	}

	for _, tt := range tests {
		if got := NormalizeBase(tt.in); got != tt.want {
			t.Fatalf("NormalizeBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoomURL(t *testing.T) {
	got, err := RoomURL("http://h/", "room 1", "a+b")
	if err != nil {
		t.Fatalf("room url: %v", err)
	}
	if got != "ws://h/room/room%201?token=a%2Bb" {
		t.Fatalf("unexpected url %q", got)
	}
	if redactURL(got) != "ws://h/room/room%201" {
		t.Fatalf("token should be redacted")
	}

	if _, err := RoomURL("", "r", ""); !errors.Is(err, ErrNoBaseURL) {
		t.Fatalf("expected ErrNoBaseURL, got %v", err)
	}
	if _, err := RoomURL("h", " ", ""); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("expected ErrNoRoom, got %v", err)
	}
}
