package interfaces

import (
	"context"

	"github.com/abhijitramesh/echovault/pkg/model"
)

// CapturePolicy decides whether a note may be stored. It returns the reasons
// for a denial; an empty result allows the note.
type CapturePolicy interface {
	Evaluate(ctx context.Context, text string, source model.Source) ([]string, error)
}
