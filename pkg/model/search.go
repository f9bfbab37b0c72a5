package model

// Origin tells which retrieval path produced a candidate
type Origin string

const (
	OriginSemantic Origin = "semantic"
	OriginLexical  Origin = "lexical"

	// OriginBoth completes the origin vocabulary for consumers of search
	// results. Retrieval never produces it: a memory found by both paths
	// keeps the origin of the path that listed it first, which is semantic.
	OriginBoth Origin = "both"
)

// Neighbor is a single nearest-neighbor hit returned by the vector index
type Neighbor struct {
	ID         MemoryID
	Similarity float64
}

// ScoredCandidate is a query-scoped reference to a memory. It is created and
// discarded within a single search request.
type ScoredCandidate struct {
	MemoryID MemoryID
	Score    float64
	Origin   Origin
}

// ScoredMemory is a resolved candidate
type ScoredMemory struct {
	Memory *Memory `json:"memory"`
	Score  float64 `json:"score"`
	Origin Origin  `json:"origin"`
}

// SearchResult is the response of a search request
type SearchResult struct {
	Answer   string          `json:"answer"`
	Memories []*ScoredMemory `json:"memories"`
}
