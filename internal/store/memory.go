package store

import (
	"context"
	"encoding/json"
	"sync"

	"balotera-backend/internal/models"
)

// MemoryStore is an in-process Store with the same conditional-write
// semantics as the Redis one. Used in tests and for local runs without
// Redis.
type MemoryStore struct {
	mu   sync.Mutex
	rev  int64
	data []byte
}

func NewMemoryStore(doc *models.Document) *MemoryStore {
	if doc == nil {
		doc = &models.Document{AllowRegister: true}
	}
	data, _ := json.Marshal(doc)
	return &MemoryStore{data: data}
}

func (s *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc models.Document
	if err := json.Unmarshal(s.data, &doc); err != nil {
		return nil, err
	}
	return &Snapshot{Rev: s.rev, Doc: &doc}, nil
}

func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot, message string) error {
	if snap.Rev == ReadOnlyRev {
		return ErrReadOnly
	}

	data, err := json.Marshal(snap.Doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rev != snap.Rev {
		return ErrConflict
	}
	s.data = data
	s.rev++
	snap.Rev = s.rev
	return nil
}
