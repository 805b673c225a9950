package core

import (
	"time"

	"github.com/vovakirdan/wirechat-room/internal/proto"
	"github.com/vovakirdan/wirechat-room/internal/store"
	"github.com/vovakirdan/wirechat-room/internal/utils"
)

// handleFrame decodes one inbound frame and applies it to the model.
// Malformed and unknown frames are dropped.
func (e *Engine) handleFrame(data []byte, now time.Time) {
	msg, err := proto.Decode(data)
	if err != nil {
		e.log.Debug().Err(err).Str("code", ErrCodeDecode).Str("conn_id", e.connID).Msg("drop frame")
		return
	}

	switch m := msg.(type) {
	case proto.Welcome:
		e.onWelcome(m)
	case proto.Snapshot:
		e.onSnapshot(m)
	case proto.Pos:
		e.onPos(m)
	case proto.History:
		e.onHistory(m, now)
	case proto.Chat:
		e.onChat(m, now)
	case proto.Join:
		e.onJoin(m, now)
	case proto.Leave:
		e.onLeave(m, now)
	default:
		e.log.Debug().Str("conn_id", e.connID).Msgf("ignore %T frame", msg)
	}
}

func (e *Engine) onWelcome(m proto.Welcome) {
	if m.UserID == "" {
		e.log.Debug().Str("conn_id", e.connID).Msg("welcome without userId")
		return
	}

	spawn := Vec{X: defaultSpawnX, Y: defaultSpawnY}
	prev, ok := e.entities.Get(m.UserID)
	if !ok {
		prev, ok = e.entities.Get(placeholderID)
	}
	if ok {
		spawn = prev.Pos()
	}

	self := Player{
		ID:    m.UserID,
		X:     spawn.X,
		Y:     spawn.Y,
		Name:  firstNonEmpty(m.Name, prev.Name, defaultName(m.UserID)),
		Color: firstNonEmpty(m.Color, prev.Color, defaultColor),
	}
	e.selfID = m.UserID
	e.entities.Update(func(players map[string]Player) {
		delete(players, placeholderID)
		players[self.ID] = self
	})
	e.entities.DropTarget(self.ID)
	e.log.Info().Str("room", e.roomID).Str("self", self.ID).Msg("welcome")
}

func (e *Engine) onSnapshot(m proto.Snapshot) {
	e.entities.Update(func(players map[string]Player) {
		for _, pos := range m.Positions {
			if pos.PlayerID == "" {
				continue
			}
			prev := players[pos.PlayerID]
			players[pos.PlayerID] = Player{
				ID:    pos.PlayerID,
				X:     deref(pos.X, 0),
				Y:     deref(pos.Y, 0),
				Name:  firstNonEmpty(deref(pos.Name, ""), prev.Name, defaultName(pos.PlayerID)),
				Color: firstNonEmpty(deref(pos.Color, ""), prev.Color, defaultColor),
			}
		}
	})
	for _, pos := range m.Positions {
		e.entities.DropTarget(pos.PlayerID)
	}
}

func (e *Engine) onPos(m proto.Pos) {
	id := m.PlayerID
	if id == "" || id == e.selfID {
		return
	}

	p, known := e.entities.Get(id)
	if !known {
		p = Player{
			ID:    id,
			X:     deref(m.X, 0),
			Y:     deref(m.Y, 0),
			Name:  firstNonEmpty(deref(m.Name, ""), defaultName(id)),
			Color: firstNonEmpty(deref(m.Color, ""), defaultColor),
		}
		e.entities.Upsert(p)
	} else {
		name := firstNonEmpty(deref(m.Name, ""), p.Name)
		color := firstNonEmpty(deref(m.Color, ""), p.Color)
		if name != p.Name || color != p.Color {
			p.Name, p.Color = name, color
			e.entities.Upsert(p)
		}
	}

	e.entities.SetTarget(id, Vec{X: deref(m.X, p.X), Y: deref(m.Y, p.Y)})
}

func (e *Engine) onHistory(m proto.History, now time.Time) {
	msgs := make([]ChatMessage, 0, len(m.Messages))
	for _, item := range m.Messages {
		msgs = append(msgs, chatFromItem(item, now))
	}
	e.persist(msgs)
	e.merge(msgs...)
}

func (e *Engine) onChat(m proto.Chat, now time.Time) {
	msg := chatFromItem(m.ChatItem, now)
	e.persist([]ChatMessage{msg})
	e.merge(msg)
}

func (e *Engine) onJoin(m proto.Join, now time.Time) {
	if m.PlayerID == "" {
		return
	}

	p, known := e.entities.Get(m.PlayerID)
	if !known {
		p = Player{ID: m.PlayerID, X: defaultSpawnX, Y: defaultSpawnY}
	}
	p.Name = firstNonEmpty(deref(m.Name, ""), p.Name, defaultName(m.PlayerID))
	p.Color = firstNonEmpty(deref(m.Color, ""), p.Color, defaultColor)
	e.entities.Upsert(p)

	e.notices.Join(p.Name, now)
}

func (e *Engine) onLeave(m proto.Leave, now time.Time) {
	if m.PlayerID == "" {
		return
	}

	prev, _ := e.entities.Get(m.PlayerID)
	e.entities.Remove(m.PlayerID)
	e.notices.Leave(firstNonEmpty(deref(m.Name, ""), prev.Name, defaultName(m.PlayerID)), now)
}

func chatFromItem(item proto.ChatItem, now time.Time) ChatMessage {
	return ChatMessage{
		Kind:     store.KindChat,
		PlayerID: item.PlayerID,
		Name:     firstNonEmpty(deref(item.Name, ""), defaultChatName),
		Color:    firstNonEmpty(deref(item.Color, ""), defaultColor),
		Text:     deref(item.Text, ""),
		T:        deref(item.T, now.UnixMilli()),
	}
}

func defaultName(id string) string {
	return defaultNamePrefix + utils.ShortID(id, 6)
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
