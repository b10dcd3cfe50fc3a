package game

import "sort"

// LeaderboardEntry is one ranked row: a named player and their score.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ComputeLeaderboard ranks the players that have a recorded score,
// descending by score. Equal scores keep submission order, so the
// result is deterministic for a given sequence of accepted scores.
func ComputeLeaderboard(players []*Player) []LeaderboardEntry {
	scored := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.HasScore() {
			scored = append(scored, p)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if *scored[i].Score != *scored[j].Score {
			return *scored[i].Score > *scored[j].Score
		}
		return scored[i].Seq < scored[j].Seq
	})

	entries := make([]LeaderboardEntry, 0, len(scored))
	for _, p := range scored {
		entries = append(entries, LeaderboardEntry{Name: p.Name, Score: *p.Score})
	}
	return entries
}
