package interfaces

import (
	"context"
	"io"

	"github.com/abhijitramesh/echovault/pkg/model"
)

// Embedder converts text into a fixed-length semantic vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces free text from a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor derives a summary and entity lists from a note
type Extractor interface {
	Extract(ctx context.Context, text string) (*model.Extraction, error)
}

// Transcriber converts recorded audio into plain text
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// Archive stores raw artifacts such as voice recordings and returns their URI
type Archive interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
