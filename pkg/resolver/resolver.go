// Package resolver implements the look-up-then-create idempotency idiom
// shared by provider plans, local users and payment methods.
package resolver

import "context"

// FindFunc fetches an existing resource. It returns (nil, nil) when the
// resource does not exist; any other error is fatal.
type FindFunc[T any] func(ctx context.Context) (*T, error)

// CreateFunc creates the resource after a miss.
type CreateFunc[T any] func(ctx context.Context) (*T, error)

// FindOrCreate resolves a resource exactly once: fetch, create on miss,
// and reconcile a lost create race by refetching when alreadyExists
// classifies the create error as a duplicate. The boolean reports whether
// this call created the resource.
func FindOrCreate[T any](
	ctx context.Context,
	find FindFunc[T],
	create CreateFunc[T],
	alreadyExists func(error) bool,
) (*T, bool, error) {
	existing, err := find(ctx)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	created, err := create(ctx)
	if err != nil {
		if alreadyExists != nil && alreadyExists(err) {
			// lost a first-create race; the winner's row is authoritative
			existing, ferr := find(ctx)
			if ferr != nil {
				return nil, false, ferr
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return created, true, nil
}
