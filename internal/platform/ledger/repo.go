package ledger

import (
	"context"
	"errors"
)

// ErrSeqConflict reports that another writer claimed the chain position
// between the tail read and the append. The caller re-reads the tail and
// retries.
var ErrSeqConflict = errors.New("ledger: chain position already taken")

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	Last(ctx context.Context) (*Entry, error)
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	ListByResource(ctx context.Context, resourceType, resourceID string) ([]*Entry, error)
	// All returns every entry in seq order for chain verification.
	All(ctx context.Context) ([]*Entry, error)
}
