// Package session keeps a short per-user memory of recently asked fields so
// consecutive verification attempts spread their questions across the record.
package session

import "sync"

const defaultCapacity = 3

// Memory is process-scoped and intentionally not persisted: a restart clears
// it for every user. Long-horizon dedup is the history store's job.
type Memory struct {
	mu       sync.Mutex
	capacity int
	recent   map[string][]string
}

func NewMemory() *Memory {
	return &Memory{
		capacity: defaultCapacity,
		recent:   make(map[string][]string),
	}
}

// Recent returns up to capacity field names in use order, oldest first.
func (m *Memory) Recent(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := m.recent[userID]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Touch pushes a field to the back, evicting the oldest past capacity.
func (m *Memory) Touch(userID, field string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := append(m.recent[userID], field)
	if len(fields) > m.capacity {
		fields = fields[len(fields)-m.capacity:]
	}
	m.recent[userID] = fields
}

func (m *Memory) Reset(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recent, userID)
}
