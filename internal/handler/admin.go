package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/yubin-park/quizpin-server/internal/game"
	"github.com/yubin-park/quizpin-server/internal/room"
	"github.com/yubin-park/quizpin-server/internal/store"
	"github.com/yubin-park/quizpin-server/internal/ws"
)

// Every admin command against an unknown PIN gets this, rejoin and
// lifecycle commands alike.
const sessionExpiredMsg = "Session expired. Create new room."

// AdminHandler handles room lifecycle commands.
type AdminHandler struct {
	rm     *room.Manager
	st     store.LeaderboardStore
	router *Router
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(rm *room.Manager, st store.LeaderboardStore, router *Router) *AdminHandler {
	return &AdminHandler{rm: rm, st: st, router: router}
}

type createRoomRequest struct {
	GameURL string `json:"game_url"`
}

type roomCreatedResponse struct {
	Pin string `json:"pin"`
}

// HandleCreateRoom creates a room and binds the caller as its admin.
func (h *AdminHandler) HandleCreateRoom(client *ws.Client, msg ws.Message) {
	var req createRoomRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.GameURL == "" {
		client.SendMessage(ws.NewErrorMessage("game_url is required"))
		return
	}

	r, err := h.rm.CreateRoom(req.GameURL)
	if err != nil {
		slog.Error("room creation failed", "error", err)
		client.SendMessage(ws.NewErrorMessage("could not create room"))
		return
	}
	r.BindAdmin(client)
	h.router.TrackRoom(client.ID, r.Pin())

	resp, _ := ws.NewMessage(ws.TypeRoomCreated, roomCreatedResponse{Pin: r.Pin()})
	client.SendMessage(resp)
}

type pinRequest struct {
	Pin string `json:"pin"`
}

type adminRestoreResponse struct {
	Pin         string                  `json:"pin"`
	Status      game.Status             `json:"status"`
	GameURL     string                  `json:"game_url"`
	Players     []game.RosterEntry      `json:"players"`
	Leaderboard []game.LeaderboardEntry `json:"leaderboard"`
}

// HandleRejoin rebinds the caller as a room's admin after a refresh
// and replies with the full restore state.
func (h *AdminHandler) HandleRejoin(client *ws.Client, msg ws.Message) {
	r := h.room(client, msg)
	if r == nil {
		return
	}

	r.BindAdmin(client)
	h.router.TrackRoom(client.ID, r.Pin())

	leaderboard, err := h.st.Load(r.Pin())
	if err != nil {
		slog.Error("leaderboard load failed", "room", r.Pin(), "error", err)
		leaderboard = []game.LeaderboardEntry{}
	}

	resp, _ := ws.NewMessage(ws.TypeAdminRestoreSuccess, adminRestoreResponse{
		Pin:         r.Pin(),
		Status:      r.Status(),
		GameURL:     r.GameURL(),
		Players:     r.Roster(),
		Leaderboard: leaderboard,
	})
	client.SendMessage(resp)

	slog.Info("admin reclaimed room", "room", r.Pin(), "client", client.ID)
}

// HandleLockRoom gates new joins for a room.
func (h *AdminHandler) HandleLockRoom(client *ws.Client, msg ws.Message) {
	if r := h.room(client, msg); r != nil {
		r.Lock()
	}
}

// HandleStartGame transitions a room to PLAYING.
func (h *AdminHandler) HandleStartGame(client *ws.Client, msg ws.Message) {
	if r := h.room(client, msg); r != nil {
		r.Start()
	}
}

// HandleEndGame transitions a room to ENDED and persists the final
// leaderboard.
func (h *AdminHandler) HandleEndGame(client *ws.Client, msg ws.Message) {
	r := h.room(client, msg)
	if r == nil {
		return
	}

	entries := r.End()
	if err := h.st.Save(r.Pin(), entries); err != nil {
		slog.Error("leaderboard save failed", "room", r.Pin(), "error", err)
	}
}

// room resolves the PIN in an admin command, reporting the session
// as expired when it is unknown.
func (h *AdminHandler) room(client *ws.Client, msg ws.Message) *room.Room {
	var req pinRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Pin == "" {
		client.SendMessage(ws.NewErrorMessage("pin is required"))
		return nil
	}

	r := h.rm.Get(req.Pin)
	if r == nil {
		client.SendMessage(ws.NewErrorMessage(sessionExpiredMsg))
		return nil
	}
	return r
}
