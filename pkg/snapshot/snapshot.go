package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vocal-lineage/backend/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Snapshot is a saved canvas. Payload is the assembled graph as sent by the
// client; it is stored as is.
type Snapshot struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store persists snapshots. Get returns an error wrapping common.ErrNotFound
// when no snapshot with id belongs to owner.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Get(ctx context.Context, owner string, id string) (*Snapshot, error)
}

// New validates the input and returns a snapshot with a fresh id.
func New(owner, name string, payload json.RawMessage) (*Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("snapshot name is required: %w", common.ErrInvalidInput)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("snapshot payload is not valid JSON: %w", common.ErrInvalidInput)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate snapshot id: %w", err)
	}

	return &Snapshot{
		ID:        id,
		Owner:     owner,
		Name:      name,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MemoryStore keeps snapshots in process.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]Snapshot)}
}

func (m *MemoryStore) Save(ctx context.Context, s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[s.ID] = *s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, owner string, id string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.snapshots[id]
	if !ok || s.Owner != owner {
		return nil, fmt.Errorf("snapshot %q: %w", id, common.ErrNotFound)
	}
	return &s, nil
}
