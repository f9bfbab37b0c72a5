package repository

import (
	"context"

	"github.com/abhijitramesh/echovault/pkg/model"
)

// Repository defines the interface for memory persistence and vector search
type Repository interface {
	// PutMemory saves a fully populated memory in a single atomic write
	PutMemory(ctx context.Context, memory *model.Memory) error

	// GetMemory retrieves a memory by ID. Missing memories are reported with model.TagNotFound
	GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error)

	// ListMemories retrieves every memory, newest first
	ListMemories(ctx context.Context) ([]*model.Memory, error)

	// SearchSimilarMemories returns up to limit nearest neighbors of embedding ordered by similarity descending
	SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.Neighbor, error)
}
