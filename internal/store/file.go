package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yubin-park/quizpin-server/internal/game"
)

// FileStore implements LeaderboardStore as one flat text file per
// room PIN. Each line is "name,score"; lines starting with '#' are
// comments and skipped on read. This is the only state that survives
// a process restart.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns a
// store writing into it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(pin string) string {
	return filepath.Join(s.dir, "leaderboard_"+pin+".txt")
}

// Load reads the leaderboard record for a PIN. A missing file loads
// as an empty leaderboard. Malformed lines are skipped.
func (s *FileStore) Load(pin string) ([]game.LeaderboardEntry, error) {
	data, err := os.ReadFile(s.path(pin))
	if os.IsNotExist(err) {
		return []game.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load leaderboard %s: %w", pin, err)
	}

	entries := []game.LeaderboardEntry{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, scoreStr, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		score, err := strconv.Atoi(strings.TrimSpace(scoreStr))
		if err != nil {
			continue
		}
		entries = append(entries, game.LeaderboardEntry{Name: name, Score: score})
	}
	return entries, nil
}

// Save overwrites the record for a PIN. The write goes through a
// temp file and rename so a crash mid-write never truncates the
// previous record.
func (s *FileStore) Save(pin string, entries []game.LeaderboardEntry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Name)
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(e.Score))
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(s.dir, "leaderboard_"+pin+".*.tmp")
	if err != nil {
		return fmt.Errorf("save leaderboard %s: %w", pin, err)
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save leaderboard %s: %w", pin, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save leaderboard %s: %w", pin, err)
	}
	if err := os.Rename(tmp.Name(), s.path(pin)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save leaderboard %s: %w", pin, err)
	}
	return nil
}
