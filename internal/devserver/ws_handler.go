package devserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-room/internal/palette"
	"github.com/vovakirdan/wirechat-room/internal/proto"
	"github.com/vovakirdan/wirechat-room/internal/utils"
)

// WSHandler upgrades /room/:id requests and bridges them to the hub.
type WSHandler struct {
	hub *Hub
	cfg Config
	log *zerolog.Logger
}

// NewWSHandler builds the room socket handler.
func NewWSHandler(hub *Hub, cfg Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, cfg: cfg, log: logger}
}

// identify resolves the display name from the optional token.
func (h *WSHandler) identify(token, id string) (string, error) {
	guest := "guest-" + utils.ShortID(id, 6)
	if h.cfg.JWTSecret == "" {
		return guest, nil
	}
	if token == "" {
		return "", ErrInvalidToken
	}
	claims, err := ValidateToken([]byte(h.cfg.JWTSecret), h.cfg.JWTIssuer, token)
	if err != nil {
		return "", err
	}
	if claims.Email != "" {
		return claims.Email, nil
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	return guest, nil
}

// Serve handles GET /room/:id.
func (h *WSHandler) Serve(c *gin.Context) {
	roomID := strings.TrimSpace(c.Param("id"))
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing room id"})
		return
	}

	id := utils.NewID()
	name, err := h.identify(c.Query("token"), id)
	if err != nil {
		h.log.Debug().Err(err).Str("room", roomID).Msg("reject token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := NewClient(id, name, palette.ForID(id))
	h.hub.Join(roomID, client)
	defer h.hub.Leave(roomID, client)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, roomID, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, roomID string, client *Client) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		msg, err := proto.Decode(data)
		if err != nil {
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("drop inbound frame")
			continue
		}
		h.hub.Inbound(roomID, client, msg)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, event); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
