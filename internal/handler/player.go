package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/yubin-park/quizpin-server/internal/game"
	"github.com/yubin-park/quizpin-server/internal/room"
	"github.com/yubin-park/quizpin-server/internal/store"
	"github.com/yubin-park/quizpin-server/internal/ws"
)

// PlayerHandler handles join, score and leaderboard messages.
type PlayerHandler struct {
	rm     *room.Manager
	st     store.LeaderboardStore
	router *Router
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(rm *room.Manager, st store.LeaderboardStore, router *Router) *PlayerHandler {
	return &PlayerHandler{rm: rm, st: st, router: router}
}

type joinRequest struct {
	Pin      string `json:"pin"`
	Username string `json:"username"`
}

type joinSuccessResponse struct {
	Pin      string `json:"pin"`
	Username string `json:"username"`
}

type playerListMessage struct {
	Players []game.RosterEntry `json:"players"`
}

// HandleJoin resolves a join or reconnection, notifies the admin
// with the refreshed roster, and sends game_start straight to the
// caller when the game is already running.
func (h *PlayerHandler) HandleJoin(client *ws.Client, msg ws.Message) {
	var req joinRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Pin == "" || req.Username == "" {
		client.SendMessage(ws.NewErrorMessage("pin and username are required"))
		return
	}

	r := h.rm.Get(req.Pin)
	if r == nil {
		client.SendMessage(ws.NewErrorMessage("Invalid PIN"))
		return
	}

	rejoined, err := r.Join(client, req.Username)
	if err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}
	h.router.TrackRoom(client.ID, r.Pin())

	resp, _ := ws.NewMessage(ws.TypeJoinSuccess, joinSuccessResponse{
		Pin:      r.Pin(),
		Username: req.Username,
	})
	client.SendMessage(resp)

	rosterMsg, _ := ws.NewMessage(ws.TypeUpdatePlayerList, playerListMessage{Players: r.Roster()})
	r.SendToAdmin(rosterMsg)

	// A late or resumed connection must not be stranded in the lobby.
	if r.Status() == game.StatusPlaying {
		startMsg, _ := ws.NewMessage(ws.TypeGameStart, room.GameStartMessage{GameURL: r.GameURL()})
		client.SendMessage(startMsg)
	}

	slog.Info("player joined", "room", r.Pin(), "player", req.Username, "rejoined", rejoined)
}

type submitScoreRequest struct {
	Pin   string `json:"pin"`
	Score int    `json:"score"`
}

type scoreReceivedResponse struct {
	Score int `json:"score"`
}

type leaderboardMessage struct {
	Leaderboard []game.LeaderboardEntry `json:"leaderboard"`
}

// HandleSubmitScore records a player's score. Only the first
// submission per identity is accepted; the live leaderboard goes to
// the admin connection only so players cannot see rankings mid-game.
func (h *PlayerHandler) HandleSubmitScore(client *ws.Client, msg ws.Message) {
	var req submitScoreRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		client.SendMessage(ws.NewErrorMessage("invalid score data"))
		return
	}

	r := h.rm.Get(req.Pin)
	if r == nil {
		return
	}

	accepted, entries := r.SubmitScore(client.ID, req.Score)
	if !accepted {
		return
	}

	resp, _ := ws.NewMessage(ws.TypeScoreReceived, scoreReceivedResponse{Score: req.Score})
	client.SendMessage(resp)

	liveMsg, _ := ws.NewMessage(ws.TypeLiveLeaderboard, leaderboardMessage{Leaderboard: entries})
	r.SendToAdmin(liveMsg)

	if err := h.st.Save(r.Pin(), entries); err != nil {
		slog.Error("leaderboard save failed", "room", r.Pin(), "error", err)
	}
}

// HandleGetLeaderboard answers with the persisted leaderboard for a
// PIN. It works for rooms that no longer live in the registry.
func (h *PlayerHandler) HandleGetLeaderboard(client *ws.Client, msg ws.Message) {
	var req pinRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Pin == "" {
		client.SendMessage(ws.NewErrorMessage("pin is required"))
		return
	}

	entries, err := h.st.Load(req.Pin)
	if err != nil {
		slog.Error("leaderboard load failed", "room", req.Pin, "error", err)
		client.SendMessage(ws.NewErrorMessage("could not load leaderboard"))
		return
	}

	resp, _ := ws.NewMessage(ws.TypeLeaderboardData, leaderboardMessage{Leaderboard: entries})
	client.SendMessage(resp)
}
