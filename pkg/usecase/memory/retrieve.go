package memory

import (
	"context"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Retrieve finds the memories most relevant to query by running vector
// search and keyword matching concurrently and merging the two result
// lists. Vector search failures are logged and the result falls back to
// keyword matches only.
func (u *UseCase) Retrieve(ctx context.Context, query string) ([]*model.ScoredMemory, error) {
	ctx, span := tracer.Start(ctx, "memory.Retrieve")
	defer span.End()

	var (
		semantic []*model.Neighbor
		lexical  []*model.Memory
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		neighbors, err := u.semanticSearch(egCtx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return goerr.Wrap(ctxErr, "vector search abandoned")
			}
			// Not returned to the group so that keyword matching keeps running
			logging.From(ctx).Warn("vector search failed, using keyword matches only", "error", err)
			return nil
		}
		semantic = neighbors
		return nil
	})
	eg.Go(func() error {
		memories, err := u.keywordSearch(egCtx, query)
		if err != nil {
			return err
		}
		lexical = memories
		return nil
	})

	err := eg.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		span.SetStatus(codes.Error, "retrieval cancelled")
		return nil, goerr.Wrap(ctxErr, "retrieval cancelled")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		return nil, err
	}

	candidates := mergeCandidates(semantic, lexical, maxResults)
	span.SetAttributes(
		attribute.Int("semantic.count", len(semantic)),
		attribute.Int("lexical.count", len(lexical)),
		attribute.Int("merged.count", len(candidates)),
	)

	return u.resolveCandidates(ctx, candidates)
}

func (u *UseCase) semanticSearch(ctx context.Context, query string) ([]*model.Neighbor, error) {
	ctx, span := tracer.Start(ctx, "memory.semanticSearch")
	defer span.End()

	vector, err := u.embedder.Embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, goerr.Wrap(err, "failed to embed query", goerr.T(model.TagProviderError))
	}

	neighbors, err := u.repo.SearchSimilarMemories(ctx, vector, maxResults)
	if err != nil {
		span.RecordError(err)
		return nil, goerr.Wrap(err, "failed to search similar memories")
	}

	span.SetAttributes(attribute.Int("neighbors", len(neighbors)))
	return neighbors, nil
}

// mergeCandidates keeps vector search hits first in their returned order,
// appends keyword matches that were not already seen, and truncates the
// result to limit. No re-sorting happens after the merge.
func mergeCandidates(semantic []*model.Neighbor, lexical []*model.Memory, limit int) []*model.ScoredCandidate {
	seen := make(map[model.MemoryID]struct{}, len(semantic)+len(lexical))
	merged := make([]*model.ScoredCandidate, 0, len(semantic)+len(lexical))

	for _, n := range semantic {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		merged = append(merged, &model.ScoredCandidate{
			MemoryID: n.ID,
			Score:    n.Similarity,
			Origin:   model.OriginSemantic,
		})
	}

	for _, m := range lexical {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, &model.ScoredCandidate{
			MemoryID: m.ID,
			Score:    lexicalScore,
			Origin:   model.OriginLexical,
		})
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (u *UseCase) resolveCandidates(ctx context.Context, candidates []*model.ScoredCandidate) ([]*model.ScoredMemory, error) {
	ctx, span := tracer.Start(ctx, "memory.resolveCandidates", trace.WithAttributes(
		attribute.Int("candidates", len(candidates)),
	))
	defer span.End()

	results := make([]*model.ScoredMemory, 0, len(candidates))
	for _, c := range candidates {
		memory, err := u.repo.GetMemory(ctx, c.MemoryID)
		if err != nil {
			if goerr.HasTag(err, model.TagNotFound) {
				logging.From(ctx).Debug("dropping candidate that no longer exists", "id", c.MemoryID)
				continue
			}
			span.RecordError(err)
			return nil, goerr.Wrap(err, "failed to resolve candidate",
				goerr.V("id", c.MemoryID),
				goerr.T(model.TagStoreUnavailable))
		}

		results = append(results, &model.ScoredMemory{
			Memory: memory,
			Score:  c.Score,
			Origin: c.Origin,
		})
	}

	return results, nil
}
