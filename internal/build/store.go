package build

import "context"

// Store is the persistence interface for build runs.
type Store interface {
	Get(ctx context.Context, id string) (*Run, bool, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*Run, bool, error)
	Put(ctx context.Context, run *Run) error
}
