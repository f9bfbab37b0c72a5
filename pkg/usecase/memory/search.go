package memory

import (
	"context"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/codes"
)

// Search answers a natural-language question from stored memories
// 1. Retrieve relevant memories by vector search and keyword matching
// 2. Synthesize an answer from the retrieved memories
func (u *UseCase) Search(ctx context.Context, query string) (*model.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.New("query is empty", goerr.T(model.TagInvalidInput))
	}

	ctx, span := tracer.Start(ctx, "memory.Search")
	defer span.End()

	scored, err := u.Retrieve(ctx, query)
	if err != nil {
		span.SetStatus(codes.Error, "retrieval failed")
		return nil, err
	}

	if len(scored) == 0 {
		return &model.SearchResult{
			Answer:   EmptyAnswer,
			Memories: []*model.ScoredMemory{},
		}, nil
	}

	memories := make([]*model.Memory, len(scored))
	for i, s := range scored {
		memories[i] = s.Memory
	}

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "search cancelled")
		return nil, goerr.Wrap(err, "search cancelled before synthesis")
	}

	answer, err := u.Synthesize(ctx, query, memories)
	if err != nil {
		span.SetStatus(codes.Error, "synthesis failed")
		return nil, err
	}

	logging.From(ctx).Debug("search completed", "query_length", len(query), "memories", len(scored))

	return &model.SearchResult{
		Answer:   answer,
		Memories: scored,
	}, nil
}
