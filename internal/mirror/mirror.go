// Package mirror implements the secondary document store that shadows the
// primary database. Writes to the mirror are best effort: the primary store
// is always authoritative, and the mirror exists so reads can fall back to
// a recent copy when the primary is unavailable.
package mirror

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for mirror operations.
var (
	// ErrObjectNotFound is returned when the mirror holds no copy of the
	// requested object.
	ErrObjectNotFound = errors.New("mirror: object not found")
)

// Store persists JSON documents under hierarchical string keys.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores data under key, replacing any prior object.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the stored bytes for key, or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object if present; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}

// PresentationKey is the mirror key for a presentation document.
func PresentationKey(id string) string {
	return fmt.Sprintf("presentations/%s.json", id)
}

// VersionKey is the mirror key for a version snapshot.
func VersionKey(presentationID, versionID string) string {
	return fmt.Sprintf("presentations/%s/versions/%s.json", presentationID, versionID)
}
