package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/models"
)

// SnapshotStore serves a static copy of the document from disk. Reads work,
// writes never do; callers see the ReadOnlyRev token and know they cannot
// persist anything.
type SnapshotStore struct {
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

func (s *SnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", s.path, err)
	}

	return &Snapshot{Rev: ReadOnlyRev, Doc: &doc}, nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap *Snapshot, message string) error {
	return ErrReadOnly
}

// FallbackStore reads from the primary store and degrades to a read-only
// snapshot when the primary is unreachable. Writes always go to the primary.
type FallbackStore struct {
	primary  Store
	fallback *SnapshotStore
	log      *logrus.Entry
}

func NewFallbackStore(primary Store, fallback *SnapshotStore) *FallbackStore {
	return &FallbackStore{
		primary:  primary,
		fallback: fallback,
		log:      logrus.WithField("component", "store"),
	}
}

func (s *FallbackStore) Load(ctx context.Context) (*Snapshot, error) {
	snap, err := s.primary.Load(ctx)
	if err == nil {
		return snap, nil
	}
	if s.fallback == nil {
		return nil, err
	}
	s.log.WithError(err).Warn("primary store unreachable, serving read-only snapshot")
	return s.fallback.Load(ctx)
}

func (s *FallbackStore) Save(ctx context.Context, snap *Snapshot, message string) error {
	if snap.Rev == ReadOnlyRev {
		return ErrReadOnly
	}
	return s.primary.Save(ctx, snap, message)
}
