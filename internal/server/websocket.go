package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"

	"woodland/internal/game"
	"woodland/internal/session"
	"woodland/internal/storage"
)

type joinPayload struct {
	PlayerID  string `json:"playerId"`
	Spectator bool   `json:"spectator,omitempty"`
}

type actionPayload struct {
	Action game.Action `json:"action"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	st, err := s.dispatch.Load(r.Context(), gameID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.WithError(err).WithField("game", gameID).Error("load game")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	// First message must be a join
	_, data, err := conn.Read(ctx)
	if err != nil {
		return
	}
	var msg session.Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "join" {
		sendWSError(ctx, conn, "first message must be a join")
		return
	}
	var join joinPayload
	if err := json.Unmarshal(msg.Payload, &join); err != nil || (join.PlayerID == "" && !join.Spectator) {
		sendWSError(ctx, conn, "invalid join payload")
		return
	}

	c, err := s.manager.Join(gameID, join.PlayerID, join.Spectator, st)
	if err != nil {
		sendWSError(ctx, conn, err.Error())
		return
	}
	log := s.log.WithFields(logrus.Fields{"game": gameID, "player": c.PlayerID})
	if !c.Spectator {
		if err := s.dispatch.SetConnected(ctx, gameID, c.PlayerID, true); err != nil {
			log.WithError(err).Warn("mark connected")
		}
	}

	// Writer goroutine: send messages from the channel to the websocket
	go func() {
		for msg := range c.Send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	// Reader loop: handle incoming messages
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var msg session.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			session.SendError(c, "invalid message")
			continue
		}
		s.handleMessage(ctx, gameID, c, msg)
	}

	// Player disconnected; the seat stays theirs for a reconnect
	if !s.manager.Leave(gameID, c) && !c.Spectator {
		if err := s.dispatch.SetConnected(context.Background(), gameID, c.PlayerID, false); err != nil {
			log.WithError(err).Warn("mark disconnected")
		}
	}
	log.Debug("connection closed")
}

func (s *Server) handleMessage(ctx context.Context, gameID string, c *session.Conn, msg session.Message) {
	switch msg.Type {
	case "action":
		if c.Spectator {
			session.SendError(c, "spectators cannot act")
			return
		}
		var ap actionPayload
		if err := json.Unmarshal(msg.Payload, &ap); err != nil {
			session.SendError(c, "invalid action payload")
			return
		}
		out, err := s.dispatch.Handle(ctx, gameID, c.PlayerID, ap.Action)
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				session.SendError(c, "internal error")
				return
			}
			session.SendError(c, err.Error())
			return
		}
		// committed actions reach everyone through the broadcast; a
		// duplicate is only acknowledged to its sender
		if out.Duplicate {
			resp := s.actionResponse(out, c.PlayerID)
			c.Deliver(session.Encode("state", session.StatePayload{State: resp.State, ValidActions: resp.ValidActions}))
		}

	default:
		session.SendError(c, "unknown message type: "+msg.Type)
	}
}

func sendWSError(ctx context.Context, conn *websocket.Conn, message string) {
	conn.Write(ctx, websocket.MessageText, session.Encode("error", session.ErrorPayload{Message: message}))
}
