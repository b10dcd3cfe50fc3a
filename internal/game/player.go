package game

// Player is one logical participant in a room. The name is the
// reconnection key: a join with a known name adopts this record
// under the new connection, score included.
type Player struct {
	Name string `json:"name"`
	// Score is nil until the player's first accepted submission.
	// It is set at most once per game instance.
	Score *int `json:"score,omitempty"`
	// Seq is the submission sequence number, assigned when the score
	// is accepted. It breaks leaderboard ties deterministically.
	Seq int `json:"-"`
}

// NewPlayer creates a player with no recorded score.
func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

// HasScore reports whether a score has been recorded.
func (p *Player) HasScore() bool {
	return p.Score != nil
}

// RosterEntry is the admin-facing view of a player. It deliberately
// carries only whether a score exists, never the value, so results
// do not leak mid-game.
type RosterEntry struct {
	Name     string `json:"name"`
	HasScore bool   `json:"has_score"`
}
