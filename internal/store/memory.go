// internal/store/memory.go
//
// Run history for solved puzzles.
// A Run is the outcome of one solve request: both query results plus the
// size of the input. The history lives only as long as the process.
//
// Two implementations:
//   - memory (this file): map + insertion order, guarded by an RWMutex.
//   - sqlStore (sqlite.go): database/sql over an in-memory SQLite DSN.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/bingo/internal/game"
)

// ErrNotFound is returned by Get for unknown run IDs.
var ErrNotFound = errors.New("not found")

// DefaultLimit applies when Recent is called with limit <= 0.
const DefaultLimit = 20

// Run is one recorded simulation. First and Last are nil when the
// corresponding query produced no winner. Wins lists every completion
// in the order it happened.
type Run struct {
	ID        string     `json:"runId"`
	CreatedAt time.Time  `json:"createdAt"`
	Boards    int        `json:"boards"`
	Draws     int        `json:"draws"`
	First     *game.Win  `json:"first"`
	Last      *game.Win  `json:"last"`
	Wins      []game.Win `json:"wins"`
}

// Store defines the persistence interface for runs.
type Store interface {
	// Save records a run, replacing any run with the same ID.
	Save(ctx context.Context, r *Run) error

	// Get retrieves a run by ID or returns ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// Recent lists up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)
}

type memory struct {
	mu    sync.RWMutex
	runs  map[string]*Run
	order []string // IDs in insertion order
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{runs: make(map[string]*Run)}
}

func (m *memory) Save(ctx context.Context, r *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[r.ID]; !ok {
		m.order = append(m.order, r.ID)
	}
	cp := *r
	cp.Wins = append([]game.Win{}, r.Wins...)
	m.runs[r.ID] = &cp
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.runs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Run, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.runs[m.order[i]])
	}
	return out, nil
}
