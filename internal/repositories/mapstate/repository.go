// Package mapstate defines the interface for map state persistence. Maps
// are stored in their text form, so anything the serializer round-trips
// survives a save/load cycle.
package mapstate

//go:generate mockgen -destination=mock/mock_repository.go -package=mapstatemock github.com/serumrl/map-engine/internal/repositories/mapstate Repository

import (
	"context"

	"github.com/serumrl/map-engine/internal/engine/world"
)

// Repository defines the interface for map state persistence
type Repository interface {
	// Save creates or replaces a map by name
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get retrieves a map by name
	// Returns errors.InvalidArgument for empty names
	// Returns errors.NotFound if the map doesn't exist
	// Returns errors.Internal for storage or parse failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List returns the names of every stored map
	// Returns errors.Internal for storage failures
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Delete removes a map by name
	// Returns errors.InvalidArgument for empty names
	// Returns errors.NotFound if the map doesn't exist
	// Returns errors.Internal for storage failures
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// SaveInput defines the input for saving a map
type SaveInput struct {
	State *world.MapState
}

// SaveOutput defines the output for saving a map
type SaveOutput struct{}

// GetInput defines the input for getting a map
type GetInput struct {
	Name string
}

// GetOutput defines the output for getting a map
type GetOutput struct {
	State *world.MapState
}

// ListInput defines the input for listing maps
type ListInput struct{}

// ListOutput defines the output for listing maps
type ListOutput struct {
	Names []string
}

// DeleteInput defines the input for deleting a map
type DeleteInput struct {
	Name string
}

// DeleteOutput defines the output for deleting a map
type DeleteOutput struct{}
