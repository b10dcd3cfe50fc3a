package store

import "github.com/yubin-park/quizpin-server/internal/game"

// LeaderboardStore defines the interface for persistent leaderboard
// records. Records are keyed by room PIN and outlive the in-memory
// room: they can be read after the room is evicted or the process
// restarts.
type LeaderboardStore interface {
	// Load reads the leaderboard for a PIN. A missing record is not
	// an error; it loads as an empty leaderboard.
	Load(pin string) ([]game.LeaderboardEntry, error)
	// Save overwrites the full leaderboard record for a PIN.
	Save(pin string, entries []game.LeaderboardEntry) error
}
