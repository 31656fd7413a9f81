package domain

import (
	"context"
	"errors"
)

var (
	ErrObservationNotFound = errors.New("observation not found")
)

type ObservationRepository interface {
	// ListAll returns the full collection in persisted order. A store that
	// has never been written to yields an empty slice, not an error.
	ListAll(ctx context.Context) ([]Observation, error)

	// GetByID retrieves an observation by its unique identifier.
	GetByID(ctx context.Context, id string) (*Observation, error)

	// Create assigns a fresh id, appends the record to the collection and
	// persists it. The returned record carries the assigned id.
	Create(ctx context.Context, input CreateObservationInput) (*Observation, error)

	// Update applies a partial patch to an existing record. Returns
	// ErrObservationNotFound if the id does not exist; never creates.
	Update(ctx context.Context, id string, patch UpdateObservationInput) (*Observation, error)

	// Delete removes the matching record. The boolean reports whether a
	// record was actually removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// IDGenerator is the id-assignment policy for new observations. Ids must
// be non-empty and collision-free across the collection.
type IDGenerator interface {
	NewID() string
}
