package repository

import (
	"math"
	"slices"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/model"
)

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankNeighbors sorts neighbors by similarity descending with ID as a
// deterministic tie breaker, and keeps at most limit entries
func rankNeighbors(neighbors []*model.Neighbor, limit int) []*model.Neighbor {
	slices.SortStableFunc(neighbors, func(a, b *model.Neighbor) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return strings.Compare(string(a.ID), string(b.ID))
		}
	})

	if limit >= 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors
}

// sortByRecency orders memories by CreatedAt descending
func sortByRecency(memories []*model.Memory) {
	slices.SortStableFunc(memories, func(a, b *model.Memory) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
}

func cloneMemory(m *model.Memory) *model.Memory {
	c := *m
	c.People = slices.Clone(m.People)
	c.Tasks = slices.Clone(m.Tasks)
	c.Topics = slices.Clone(m.Topics)
	c.Decisions = slices.Clone(m.Decisions)
	c.Embedding = slices.Clone(m.Embedding)
	return &c
}
