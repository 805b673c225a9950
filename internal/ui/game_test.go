package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-room/internal/core"
	"github.com/vovakirdan/wirechat-room/internal/store"
)

func TestTranscriptLinesCarryTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 7, 3, 0, time.Local)
	msgs := []core.ChatMessage{
		{Kind: store.KindChat, Name: "alice@example.com", Text: "hi", T: at.UnixMilli()},
		{Kind: store.KindSystem, Text: "bob 加入了房间", T: at.Add(time.Minute).UnixMilli()},
	}

	got := transcriptLines(msgs, 80)
	want := []string{
		"09:07:03 a*****@****.***: hi",
		"09:08:03 bob 加入了房间",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTranscriptLinesWrapWithStamp(t *testing.T) {
	msgs := []core.ChatMessage{{Kind: store.KindChat, Name: "bob", Text: strings.Repeat("word ", 10), T: 0}}
	got := transcriptLines(msgs, 20)
	if len(got) < 2 {
		t.Fatalf("expected the row to wrap, got %v", got)
	}
	if !strings.HasPrefix(got[0], time.UnixMilli(0).Format("15:04:05")+" bob:") {
		t.Fatalf("stamp should lead the first line, got %q", got[0])
	}
}
