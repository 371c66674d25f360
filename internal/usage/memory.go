package usage

import (
	"context"
	"sync"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
)

// Memory is the in-process Store. Counters live in a map guarded by a
// read-write mutex used only for entry lookup; each identity carries
// its own lock so concurrent requests for different identities never
// serialize against each other.
type Memory struct {
	mu      sync.RWMutex
	records map[identity.Identity]*memoryRecord
}

type memoryRecord struct {
	mu   sync.Mutex
	used int64
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{records: make(map[identity.Identity]*memoryRecord)}
}

func (m *Memory) Peek(_ context.Context, id identity.Identity) (int64, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return 0, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.used, nil
}

func (m *Memory) TryConsume(_ context.Context, id identity.Identity, limit int64) (Decision, error) {
	rec := m.record(id)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if limit != Unlimited && rec.used >= limit {
		return Decision{Admitted: false, Used: rec.used}, nil
	}

	rec.used++
	return Decision{Admitted: true, Used: rec.used}, nil
}

func (m *Memory) Reset(_ context.Context, id identity.Identity) error {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return nil
	}

	rec.mu.Lock()
	rec.used = 0
	rec.mu.Unlock()
	return nil
}

// record returns the entry for id, creating it lazily on first use.
func (m *Memory) record(id identity.Identity) *memoryRecord {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if ok {
		return rec
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok = m.records[id]; ok {
		return rec
	}

	rec = &memoryRecord{}
	m.records[id] = rec
	return rec
}
