// internal/store/memory.go
//
// In-memory implementation of the card Store.
// Cards live only as long as the process; the key in the share link is what
// survives, so losing a card just means the player's marks reset.
//
// Characteristics:
//   - Stores *card.Card objects keyed by ID in a map.
//   - Concurrency-safe via a mutex; Get writes the idle timer, so it locks too.
//   - Idle cards are dropped by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/bingo/internal/card"
)

// ErrNotFound is returned by Get for an unknown or swept card ID.
var ErrNotFound = errors.New("store: card not found")

// Store defines the persistence interface for card sessions.
type Store interface {
	// Save persists or updates a card and refreshes its idle timer.
	Save(ctx context.Context, c *card.Card) error

	// Get retrieves a card by ID and refreshes its idle timer.
	Get(ctx context.Context, id string) (*card.Card, error)

	// Sweep drops cards not touched since cutoff and returns how many went.
	Sweep(cutoff time.Time) int
}

type entry struct {
	card     *card.Card
	lastSeen time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.Mutex
	cards map[string]*entry
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{cards: make(map[string]*entry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, c *card.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[c.ID] = &entry{card: c, lastSeen: m.now()}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*card.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = m.now()
	return e.card, nil
}

func (m *memory) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.cards {
		if e.lastSeen.Before(cutoff) {
			delete(m.cards, id)
			n++
		}
	}
	return n
}

// Reap calls Sweep every interval, dropping cards idle for longer than idle,
// until ctx is done.
func Reap(ctx context.Context, s Store, interval, idle time.Duration, onSwept func(int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Sweep(now.Add(-idle)); n > 0 && onSwept != nil {
				onSwept(n)
			}
		}
	}
}
