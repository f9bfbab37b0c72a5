package memory

import (
	"context"

	"github.com/abhijitramesh/echovault/pkg/model"
)

// ListOptions contains options for listing memories
type ListOptions struct {
	Offset int
	Limit  int // zero or negative returns every memory after Offset
}

// List retrieves memories, newest first
func (u *UseCase) List(ctx context.Context, opts ListOptions) ([]*model.Memory, error) {
	memories, err := u.repo.ListMemories(ctx)
	if err != nil {
		return nil, err
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(memories) {
			return []*model.Memory{}, nil
		}
		memories = memories[opts.Offset:]
	}
	if opts.Limit > 0 && len(memories) > opts.Limit {
		memories = memories[:opts.Limit]
	}

	return memories, nil
}
