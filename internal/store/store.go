// Package store persists the shared application document. The document is
// one JSON value read and replaced wholesale; writes are conditional on a
// revision token so concurrent writers lose with a conflict instead of
// silently clobbering each other.
package store

import (
	"context"
	"errors"

	"balotera-backend/internal/models"
)

// ReadOnlyRev marks a snapshot that cannot be written back (fallback reads).
const ReadOnlyRev int64 = -1

var (
	// ErrConflict means the document changed since the snapshot was loaded.
	ErrConflict = errors.New("document revision conflict")

	// ErrReadOnly means the snapshot came from the static fallback and has
	// nowhere to be written.
	ErrReadOnly = errors.New("document snapshot is read-only")
)

// Snapshot is one observed state of the shared document plus the revision
// token it was read at.
type Snapshot struct {
	Rev int64
	Doc *models.Document
}

// Store is the two-operation protocol every mutation path goes through:
// read the latest document, write the whole document back.
type Store interface {
	// Load returns the current document. Never returns a nil Doc on success.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored document if its revision still equals
	// snap.Rev, recording message as the audit label. ErrConflict otherwise.
	Save(ctx context.Context, snap *Snapshot, message string) error
}

// maxUpdateRetries bounds the reload-apply-save loop under contention.
const maxUpdateRetries = 5

// Update runs the read-modify-write cycle: load fresh, apply fn, save,
// retrying on revision conflicts. fn returns the audit message for the
// write; it must be safe to re-run against a reloaded document, and
// returning an error aborts with nothing written.
func Update(ctx context.Context, s Store, fn func(doc *models.Document) (string, error)) error {
	var err error
	for i := 0; i < maxUpdateRetries; i++ {
		var snap *Snapshot
		snap, err = s.Load(ctx)
		if err != nil {
			return err
		}
		var message string
		message, err = fn(snap.Doc)
		if err != nil {
			return err
		}
		err = s.Save(ctx, snap, message)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}
