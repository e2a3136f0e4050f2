package notes

import (
	"context"
	"fmt"
)

// Persistence is the durable storage behind a Store. Implementations assign
// ids and timestamps on Create and Update.
type Persistence interface {
	List(ctx context.Context) ([]Note, error)
	Create(ctx context.Context, d Draft) (Note, error)
	Update(ctx context.Context, id string, d Draft) (Note, error)
	Delete(ctx context.Context, id string) error
}

// presenceChecker is implemented by backends that can tell an empty store
// apart from one that was never written.
type presenceChecker interface {
	HasData(ctx context.Context) (bool, error)
}

// Unavailable is a backend for a storage that could not be configured. Every
// operation fails with ErrStorageUnavailable.
type Unavailable struct {
	Reason string
}

func (u Unavailable) err() error {
	if u.Reason == "" {
		return ErrStorageUnavailable
	}
	return fmt.Errorf("%w: %s", ErrStorageUnavailable, u.Reason)
}

func (u Unavailable) List(context.Context) ([]Note, error) { return nil, u.err() }

func (u Unavailable) Create(context.Context, Draft) (Note, error) { return Note{}, u.err() }

func (u Unavailable) Update(context.Context, string, Draft) (Note, error) { return Note{}, u.err() }

func (u Unavailable) Delete(context.Context, string) error { return u.err() }
