package room

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yubin-park/quizpin-server/internal/game"
	"github.com/yubin-park/quizpin-server/internal/ws"
)

// Join policy errors, delivered verbatim to the joining connection.
var (
	ErrRoomLocked  = errors.New("Room is locked.")
	ErrGameStarted = errors.New("Game already started.")
)

// Room is one quiz session: a PIN-keyed lifecycle (LOBBY -> PLAYING
// -> ENDED), a lock flag gating new joins, the player set, and the
// broadcast group. The admin binding is last-write-wins; concurrent
// admin tabs are unsupported.
type Room struct {
	pin     string
	gameURL string
	status  game.Status
	locked  bool

	// admin is the single authoritative admin connection.
	admin *ws.Client

	// players is keyed by connection ID; a player's record moves to
	// a new key on reconnection. clients is the broadcast group and
	// includes the admin connection.
	players map[string]*game.Player
	clients map[string]*ws.Client

	nextSeq    int
	lastActive time.Time
	mu         sync.RWMutex
}

// NewRoom creates a room in the lobby state.
func NewRoom(pin, gameURL string) *Room {
	return &Room{
		pin:        pin,
		gameURL:    gameURL,
		status:     game.StatusLobby,
		players:    make(map[string]*game.Player),
		clients:    make(map[string]*ws.Client),
		lastActive: time.Now(),
	}
}

// Pin returns the room's PIN.
func (r *Room) Pin() string {
	return r.pin
}

// GameURL returns the URL handed to clients on game start.
func (r *Room) GameURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gameURL
}

// Status returns the lifecycle state.
func (r *Room) Status() game.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Locked reports whether new joins are gated.
func (r *Room) Locked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

// LastActive returns the time of the room's last mutation.
func (r *Room) LastActive() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}

// Caller must hold r.mu.
func (r *Room) touch() {
	r.lastActive = time.Now()
}

// BindAdmin makes client the authoritative admin connection and
// joins it to the broadcast group. Rebinding silently replaces the
// previous binding.
func (r *Room) BindAdmin(client *ws.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admin = client
	r.clients[client.ID] = client
	r.touch()
}

// Join resolves a player join or reconnection for the canonical
// policy: a known name always reattaches (locked or mid-game
// included) and keeps its recorded score under the new connection
// ID; a new name is rejected once the room is locked or has left the
// lobby. Reports whether this was a reconnection.
func (r *Room) Join(client *ws.Client, username string) (rejoined bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldID string
	var existing *game.Player
	for id, p := range r.players {
		if p.Name == username {
			oldID, existing = id, p
			break
		}
	}

	if existing != nil {
		if oldID != client.ID {
			delete(r.players, oldID)
			delete(r.clients, oldID)
			r.players[client.ID] = existing
		}
		r.clients[client.ID] = client
		r.touch()
		return true, nil
	}

	if r.locked {
		return false, ErrRoomLocked
	}
	if r.status != game.StatusLobby {
		return false, ErrGameStarted
	}

	r.players[client.ID] = game.NewPlayer(username)
	r.clients[client.ID] = client
	r.touch()
	return false, nil
}

// SubmitScore records a score for the player on connID. First score
// wins: once a score exists, later submissions are dropped without
// an acknowledgment. This is the anti-retry guard, not an error.
// On acceptance it returns the refreshed leaderboard.
func (r *Room) SubmitScore(connID string, score int) (accepted bool, entries []game.LeaderboardEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[connID]
	if !ok {
		return false, nil
	}
	r.touch()
	if p.HasScore() {
		return false, nil
	}

	p.Score = &score
	r.nextSeq++
	p.Seq = r.nextSeq
	slog.Info("score received", "room", r.pin, "player", p.Name, "score", score)
	return true, game.ComputeLeaderboard(r.playerList())
}

// Lock gates new joins and notifies the whole room. Returning
// players can still rejoin.
func (r *Room) Lock() {
	r.mu.Lock()
	r.locked = true
	r.touch()
	r.mu.Unlock()

	msg, _ := ws.NewMessage(ws.TypeRoomLockedStatus, lockedStatusMessage{Locked: true})
	r.Broadcast(msg)
	slog.Info("room locked", "room", r.pin)
}

// Start transitions to PLAYING and broadcasts the game URL to the
// whole room.
func (r *Room) Start() {
	r.mu.Lock()
	r.status = game.StatusPlaying
	r.touch()
	r.mu.Unlock()

	msg, _ := ws.NewMessage(ws.TypeGameStart, GameStartMessage{GameURL: r.GameURL()})
	r.Broadcast(msg)
	slog.Info("game started", "room", r.pin)
}

// End transitions to ENDED, broadcasts the final leaderboard to the
// whole room and returns it for persistence.
func (r *Room) End() []game.LeaderboardEntry {
	r.mu.Lock()
	r.status = game.StatusEnded
	r.touch()
	entries := game.ComputeLeaderboard(r.playerList())
	r.mu.Unlock()

	msg, _ := ws.NewMessage(ws.TypeGameEnded, gameEndedMessage{Leaderboard: entries})
	r.Broadcast(msg)
	slog.Info("game ended", "room", r.pin, "entries", len(entries))
	return entries
}

// Detach drops a connection from the broadcast group. The player
// record stays behind so the identity can reconnect by name. A
// detached admin binding is cleared until the next admin_rejoin.
func (r *Room) Detach(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, connID)
	if r.admin != nil && r.admin.ID == connID {
		r.admin = nil
	}
}

// HasConnection reports whether a connection ID has a player record.
func (r *Room) HasConnection(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.players[connID]
	return ok
}

// PlayerCount returns the number of logical players.
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Roster returns the admin-facing player list: names and whether a
// score was recorded, never the score values.
func (r *Room) Roster() []game.RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roster := make([]game.RosterEntry, 0, len(r.players))
	for _, p := range r.players {
		roster = append(roster, game.RosterEntry{Name: p.Name, HasScore: p.HasScore()})
	}
	return roster
}

// Leaderboard computes the current ranking from live player state.
func (r *Room) Leaderboard() []game.LeaderboardEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return game.ComputeLeaderboard(r.playerList())
}

// Caller must hold r.mu.
func (r *Room) playerList() []*game.Player {
	players := make([]*game.Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	return players
}

// Broadcast sends a message to every connection in the room group.
func (r *Room) Broadcast(msg ws.Message) {
	r.mu.RLock()
	clients := make([]*ws.Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		c.SendMessage(msg)
	}
}

// SendToAdmin sends a message to the bound admin connection only.
// It is a no-op while no admin is bound.
func (r *Room) SendToAdmin(msg ws.Message) {
	r.mu.RLock()
	admin := r.admin
	r.mu.RUnlock()
	if admin != nil {
		admin.SendMessage(msg)
	}
}

type lockedStatusMessage struct {
	Locked bool `json:"locked"`
}

// GameStartMessage carries the game URL clients open on start.
type GameStartMessage struct {
	GameURL string `json:"game_url"`
}

type gameEndedMessage struct {
	Leaderboard []game.LeaderboardEntry `json:"leaderboard"`
}
