package core

import (
	"time"

	"github.com/vovakirdan/wirechat-room/internal/mask"
	"github.com/vovakirdan/wirechat-room/internal/store"
)

// User-visible texts.
const (
	textNoBaseURL     = "无法连接：未配置 WebSocket 服务器地址 (base_url)。"
	textMissingBase   = "缺少 WebSocket 服务器地址，请在配置文件中设置 base_url 或设置 WIRECHAT_BASE_URL。"
	textLeftRoom      = "你已离开房间"
	textDisconnected  = "连接已断开"
	textDialFailed    = "连接失败："
	textJoinedSuffix  = " 加入房间"
	textLeftSuffix    = " 离开房间"
	noticeNameJoiner  = "、"
	defaultChatName   = "user"
	defaultColor      = "#999"
	placeholderColor  = "#888"
	defaultNamePrefix = "user-"
)

// ChatMessage is one transcript row.
type ChatMessage struct {
	Kind     store.Kind
	PlayerID string
	Name     string
	Color    string
	Text     string
	T        int64 // epoch milliseconds
}

type dedupKey struct {
	t        int64
	playerID string
	text     string
}

func (m ChatMessage) key() dedupKey {
	return dedupKey{t: m.T, playerID: m.PlayerID, text: m.Text}
}

// IsSystem reports whether the row is a synthesized notice.
func (m ChatMessage) IsSystem() bool {
	return m.Kind == store.KindSystem
}

// Record converts the message for the durable store.
func (m ChatMessage) Record(roomID string) store.ChatRecord {
	kind := m.Kind
	if kind == "" {
		kind = store.KindChat
	}
	return store.ChatRecord{
		RoomID:   roomID,
		T:        m.T,
		PlayerID: m.PlayerID,
		Kind:     kind,
		Name:     m.Name,
		Color:    m.Color,
		Text:     m.Text,
	}
}

func messageFromRecord(r store.ChatRecord) ChatMessage {
	kind := r.Kind
	if kind == "" {
		kind = store.KindChat
	}
	return ChatMessage{
		Kind:     kind,
		PlayerID: r.PlayerID,
		Name:     r.Name,
		Color:    r.Color,
		Text:     r.Text,
		T:        r.T,
	}
}

func systemMessage(text string, now time.Time) ChatMessage {
	return ChatMessage{Kind: store.KindSystem, Text: text, T: now.UnixMilli()}
}

// DisplayLine renders the row for screens and terminals with identities masked.
func (m ChatMessage) DisplayLine() string {
	if m.IsSystem() {
		return mask.InText(m.Text)
	}
	name := mask.Display(m.Name)
	if name == "" {
		name = defaultChatName
	}
	return name + ": " + mask.InText(m.Text)
}
