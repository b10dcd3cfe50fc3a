package room

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const sweepInterval = time.Minute

// Manager owns the process-wide PIN -> Room registry. It is created
// at startup and injected into every handler; no global state.
type Manager struct {
	rooms map[string]*Room // pin -> room
	mu    sync.RWMutex
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom generates a unique PIN and registers a new room for
// gameURL. It fails only when no free PIN can be found.
func (m *Manager) CreateRoom(gameURL string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make(map[string]bool, len(m.rooms))
	for pin := range m.rooms {
		existing[pin] = true
	}

	pin, err := GeneratePin(existing)
	if err != nil {
		return nil, err
	}
	room := NewRoom(pin, gameURL)
	m.rooms[pin] = room

	slog.Info("room created", "room", pin)
	return room, nil
}

// Get returns the room for a PIN, or nil.
func (m *Manager) Get(pin string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[pin]
}

// RemoveRoom drops a room from the registry. Its persisted
// leaderboard record is untouched.
func (m *Manager) RemoveRoom(pin string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, pin)
	slog.Info("room removed", "room", pin)
}

// RoomCount returns the number of registered rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Sweep evicts rooms idle for longer than ttl and returns how many
// were removed. Every room mutation refreshes the idle clock.
func (m *Manager) Sweep(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for pin, room := range m.rooms {
		if time.Since(room.LastActive()) > ttl {
			delete(m.rooms, pin)
			removed++
			slog.Info("idle room evicted", "room", pin)
		}
	}
	return removed
}

// Run sweeps idle rooms periodically until ctx is canceled. A
// non-positive ttl disables eviction.
func (m *Manager) Run(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ttl)
		}
	}
}
