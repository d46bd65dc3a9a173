// Package registry holds the process-wide mapping from room ID to Room.
// Rooms are created on first reference and removed when the last player
// leaves. All state is in-memory and scoped to the process lifetime.
package registry

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"ludoarena/game/engine"
)

var ErrRoomNotFound = errors.New("room not found")

// Manager is safe for concurrent use from many connection handlers. It only
// guards the map itself; per-room serialization is the service layer's job.
type Manager struct {
	rooms map[string]*engine.Room
	mu    sync.RWMutex

	// newCode draws candidate room codes. Overridable in tests.
	newCode func() string
}

// NewManager creates an empty room registry.
func NewManager() *Manager {
	return &Manager{
		rooms:   make(map[string]*engine.Room),
		newCode: randomCode,
	}
}

// GetOrCreate returns the room with the given ID, creating it atomically on
// first reference. An empty ID gets a generated 4-hex-char room code.
// Room IDs are case-insensitive.
func (m *Manager) GetOrCreate(id string) *engine.Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.unusedCodeLocked()
	}

	key := strings.ToLower(id)
	if room, ok := m.rooms[key]; ok {
		return room
	}

	room := engine.NewRoom(id)
	m.rooms[key] = room
	return room
}

// Get returns an existing room or ErrRoomNotFound.
func (m *Manager) Get(id string) (*engine.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[strings.ToLower(id)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Remove deletes the room. Callers invoke this once the room is empty.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, strings.ToLower(id))
}

// List returns all live rooms.
func (m *Manager) List() []*engine.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*engine.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		result = append(result, room)
	}
	return result
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// unusedCodeLocked draws codes until one does not collide with a live room,
// so a generated code can never seat a player in a stranger's game.
func (m *Manager) unusedCodeLocked() string {
	for {
		if code := m.newCode(); m.rooms[code] == nil {
			return code
		}
	}
}

// randomCode returns a random 4-character room code.
func randomCode() string {
	bytes := make([]byte, 2)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}
