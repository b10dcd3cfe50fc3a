package handler

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/yubin-park/quizpin-server/internal/room"
	"github.com/yubin-park/quizpin-server/internal/store"
	"github.com/yubin-park/quizpin-server/internal/ws"
)

// Router dispatches incoming messages to the appropriate handler.
type Router struct {
	rm     *room.Manager
	admin  *AdminHandler
	player *PlayerHandler

	// roomPins tracks connection ID -> room PIN, shared across
	// handlers, so disconnects can detach the right room group.
	roomPins map[string]string
	mu       sync.RWMutex
}

// NewRouter creates a new message router.
func NewRouter(rm *room.Manager, st store.LeaderboardStore) *Router {
	r := &Router{
		rm:       rm,
		roomPins: make(map[string]string),
	}
	r.admin = NewAdminHandler(rm, st, r)
	r.player = NewPlayerHandler(rm, st, r)
	return r
}

// TrackRoom maps a connection ID to the room PIN it belongs to.
func (r *Router) TrackRoom(clientID, pin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roomPins[clientID] = pin
}

// RoomPin returns the tracked room PIN for a connection, or "".
func (r *Router) RoomPin(clientID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roomPins[clientID]
}

// Untrack removes a connection's room mapping.
func (r *Router) Untrack(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roomPins, clientID)
}

// HandleMessage parses and routes an incoming client message.
func (r *Router) HandleMessage(cm *ws.ClientMessage) {
	var msg ws.Message
	if err := json.Unmarshal(cm.Data, &msg); err != nil {
		slog.Warn("invalid message format", "client", cm.Client.ID, "error", err)
		cm.Client.SendMessage(ws.NewErrorMessage("invalid message format"))
		return
	}

	switch msg.Type {
	// Admin messages
	case ws.TypeAdminCreateRoom:
		r.admin.HandleCreateRoom(cm.Client, msg)
	case ws.TypeAdminRejoin:
		r.admin.HandleRejoin(cm.Client, msg)
	case ws.TypeAdminLockRoom:
		r.admin.HandleLockRoom(cm.Client, msg)
	case ws.TypeAdminStartGame:
		r.admin.HandleStartGame(cm.Client, msg)
	case ws.TypeAdminEndGame:
		r.admin.HandleEndGame(cm.Client, msg)

	// Player messages
	case ws.TypePlayerJoin:
		r.player.HandleJoin(cm.Client, msg)
	case ws.TypeSubmitScore:
		r.player.HandleSubmitScore(cm.Client, msg)
	case ws.TypeGetLeaderboard:
		r.player.HandleGetLeaderboard(cm.Client, msg)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", cm.Client.ID)
		cm.Client.SendMessage(ws.NewErrorMessage("unknown message type: " + msg.Type))
	}
}

// HandleDisconnect detaches the connection from its room group. The
// player record stays behind so the identity can rejoin by name.
func (r *Router) HandleDisconnect(client *ws.Client) {
	pin := r.RoomPin(client.ID)
	if pin == "" {
		return
	}
	if ro := r.rm.Get(pin); ro != nil {
		ro.Detach(client.ID)
	}
	r.Untrack(client.ID)
}
