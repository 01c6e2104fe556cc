// Package snapshot persists the mutation-op stream that rebuilds a
// client's live tree. A snapshot is the ops frame a fresh client would
// need to reach the current view; stores keep them by name so a
// session can be restored or inspected later.
package snapshot

import (
	"context"
	"errors"
	"strings"

	"github.com/vireo-dev/vireo/pkg/protocol"
)

// ErrNotFound is returned when no snapshot exists under a name.
var ErrNotFound = errors.New("snapshot: not found")

// ErrBadName is returned for names that are empty or contain path
// separators.
var ErrBadName = errors.New("snapshot: invalid name")

// Store is the interface for snapshot storage backends.
// Implement this interface to use S3, GCS, or other storage.
type Store interface {
	// Save persists the frame under name, overwriting any previous
	// snapshot with that name.
	Save(ctx context.Context, name string, frame *protocol.OpsFrame) error

	// Load retrieves the frame stored under name.
	Load(ctx context.Context, name string) (*protocol.OpsFrame, error)

	// List returns the stored snapshot names in unspecified order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the snapshot under name. Deleting a missing
	// snapshot returns ErrNotFound.
	Delete(ctx context.Context, name string) error
}

// checkName rejects names that could escape the storage namespace.
func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return ErrBadName
	}
	return nil
}
