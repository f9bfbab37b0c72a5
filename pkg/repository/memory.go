package repository

import (
	"context"
	"sync"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Memory implements Repository in process memory
type Memory struct {
	mu       sync.RWMutex
	memories map[model.MemoryID]*model.Memory
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		memories: make(map[model.MemoryID]*model.Memory),
	}
}

func (r *Memory) PutMemory(ctx context.Context, memory *model.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.memories[memory.ID]; exists {
		return goerr.New("memory already exists", goerr.V("id", memory.ID))
	}
	r.memories[memory.ID] = cloneMemory(memory)
	return nil
}

func (r *Memory) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memory, ok := r.memories[id]
	if !ok {
		return nil, goerr.New("memory not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	return cloneMemory(memory), nil
}

func (r *Memory) ListMemories(ctx context.Context) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memories := make([]*model.Memory, 0, len(r.memories))
	for _, memory := range r.memories {
		memories = append(memories, cloneMemory(memory))
	}
	sortByRecency(memories)

	return memories, nil
}

func (r *Memory) SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.Neighbor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	neighbors := make([]*model.Neighbor, 0, len(r.memories))
	for id, memory := range r.memories {
		neighbors = append(neighbors, &model.Neighbor{
			ID:         id,
			Similarity: cosineSimilarity(embedding, memory.Embedding),
		})
	}

	return rankNeighbors(neighbors, limit), nil
}
