package memory

import (
	"time"

	"github.com/abhijitramesh/echovault/pkg/interfaces"
	"github.com/abhijitramesh/echovault/pkg/repository"
	"go.opentelemetry.io/otel"
)

const (
	// maxResults bounds both retrieval paths and the merged list
	maxResults = 10
	// lexicalScore is assigned to keyword matches that the vector search
	// did not return
	lexicalScore = 0.7
)

var tracer = otel.Tracer("github.com/abhijitramesh/echovault/pkg/usecase/memory")

// UseCase provides memory capture, retrieval and synthesis
type UseCase struct {
	repo      repository.Repository
	embedder  interfaces.Embedder
	generator interfaces.Generator
	extractor interfaces.Extractor

	transcriber interfaces.Transcriber
	archive     interfaces.Archive
	policy      interfaces.CapturePolicy
	now         func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithTranscriber enables InsertAudio
func WithTranscriber(t interfaces.Transcriber) Option {
	return func(uc *UseCase) {
		uc.transcriber = t
	}
}

// WithArchive stores the original audio of voice notes
func WithArchive(a interfaces.Archive) Option {
	return func(uc *UseCase) {
		uc.archive = a
	}
}

// WithCapturePolicy sets the policy evaluated before a note is ingested
func WithCapturePolicy(p interfaces.CapturePolicy) Option {
	return func(uc *UseCase) {
		uc.policy = p
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new memory UseCase instance
func New(
	repo repository.Repository,
	embedder interfaces.Embedder,
	generator interfaces.Generator,
	extractor interfaces.Extractor,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		repo:      repo,
		embedder:  embedder,
		generator: generator,
		extractor: extractor,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
