package memory

import (
	"context"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Show retrieves a single memory by ID
func (u *UseCase) Show(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	if id == "" {
		return nil, goerr.New("memory ID is empty", goerr.T(model.TagInvalidInput))
	}
	return u.repo.GetMemory(ctx, id)
}
