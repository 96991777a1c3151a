package cache

import (
	"context"
	"sync"
	"time"

	"github.com/samber/mo"

	"focal/internal/model"
)

type memoryKey struct {
	userID uint
	day    string
}

type memoryEntry struct {
	agenda    model.Agenda
	expiresAt time.Time
}

// Memory is an in-process AgendaCache for single-instance deployments.
type Memory struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	entries     map[memoryKey]memoryEntry
	generations map[uint]int64
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[memoryKey]memoryEntry),
		generations: make(map[uint]int64),
	}
}

func (m *Memory) Generation(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[userID], nil
}

func (m *Memory) Load(_ context.Context, userID uint, day string) (mo.Option[model.Agenda], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{userID: userID, day: day}
	entry, ok := m.entries[key]
	if !ok {
		return mo.None[model.Agenda](), nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return mo.None[model.Agenda](), nil
	}
	return mo.Some(cloneAgenda(entry.agenda)), nil
}

// Store drops the agenda when the user was invalidated after generation was read.
func (m *Memory) Store(_ context.Context, userID uint, generation int64, day string, agenda model.Agenda) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generations[userID] != generation {
		return nil
	}
	m.entries[memoryKey{userID: userID, day: day}] = memoryEntry{
		agenda:    cloneAgenda(agenda),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generations[userID]++
	for key := range m.entries {
		if key.userID == userID {
			delete(m.entries, key)
		}
	}
	return nil
}

// Prune drops expired entries and returns how many were removed.
func (m *Memory) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func cloneAgenda(a model.Agenda) model.Agenda {
	items := make([]model.AgendaItem, len(a.Items))
	copy(items, a.Items)
	a.Items = items
	return a
}
