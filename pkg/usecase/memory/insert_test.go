package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestInsert(t *testing.T) {
	repo := newMockRepo()
	uc := memory.New(repo, &mockEmbedder{}, &mockGenerator{}, &mockExtractor{},
		memory.WithClock(func() time.Time { return baseTime }),
	)
	ctx := context.Background()

	saved, err := uc.Insert(ctx, "Met Sarah about the roadmap, need to send the report", model.SourceText)
	gt.NoError(t, err)
	gt.NoError(t, saved.Validate())
	gt.Equal(t, saved.Source, model.SourceText)
	gt.Equal(t, saved.Summary, "Talked with Sarah about the roadmap")
	gt.Equal(t, saved.People, []string{"Sarah"})
	gt.Equal(t, saved.CreatedAt, baseTime)
	gt.A(t, saved.Embedding).Length(3)

	got, err := repo.GetMemory(ctx, saved.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.RawText, saved.RawText)
	gt.Equal(t, got.Tasks, []string{"send the report"})
}

func TestInsertNormalizesMissingLists(t *testing.T) {
	repo := newMockRepo()
	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, text string) (*model.Extraction, error) {
			return &model.Extraction{Summary: "Just a thought"}, nil
		},
	}
	uc := memory.New(repo, &mockEmbedder{}, &mockGenerator{}, extractor)

	saved, err := uc.Insert(context.Background(), "just a thought", model.SourceTool)
	gt.NoError(t, err)
	gt.NotNil(t, saved.People)
	gt.NotNil(t, saved.Tasks)
	gt.NotNil(t, saved.Topics)
	gt.NotNil(t, saved.Decisions)
	gt.NoError(t, saved.Validate())
}

func TestInsertInvalidInput(t *testing.T) {
	repo := newMockRepo()
	embedder := &mockEmbedder{}
	extractor := &mockExtractor{}
	uc := memory.New(repo, embedder, &mockGenerator{}, extractor)
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		_, err := uc.Insert(ctx, "  \n ", model.SourceText)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.TagInvalidInput))
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := uc.Insert(ctx, "hello", model.Source("email"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.TagInvalidInput))
	})

	gt.Equal(t, embedder.calls.Load(), int32(0))
	gt.Equal(t, extractor.calls.Load(), int32(0))

	memories, err := repo.ListMemories(ctx)
	gt.NoError(t, err)
	gt.A(t, memories).Length(0)
}

func TestInsertEnrichmentFailure(t *testing.T) {
	testCases := []struct {
		name      string
		embedder  *mockEmbedder
		extractor *mockExtractor
	}{
		{
			name:     "extraction fails",
			embedder: &mockEmbedder{},
			extractor: &mockExtractor{
				extractFn: func(ctx context.Context, text string) (*model.Extraction, error) {
					return nil, goerr.New("bad JSON", goerr.T(model.TagProviderError))
				},
			},
		},
		{
			name: "embedding fails",
			embedder: &mockEmbedder{
				embedFn: func(ctx context.Context, text string) ([]float32, error) {
					return nil, goerr.New("quota exceeded", goerr.T(model.TagProviderError))
				},
			},
			extractor: &mockExtractor{},
		},
		{
			name: "embedding is empty",
			embedder: &mockEmbedder{
				embedFn: func(ctx context.Context, text string) ([]float32, error) {
					return []float32{}, nil
				},
			},
			extractor: &mockExtractor{},
		},
		{
			name:     "summary is empty",
			embedder: &mockEmbedder{},
			extractor: &mockExtractor{
				extractFn: func(ctx context.Context, text string) (*model.Extraction, error) {
					return &model.Extraction{Summary: " "}, nil
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepo()
			uc := memory.New(repo, tc.embedder, &mockGenerator{}, tc.extractor)
			ctx := context.Background()

			_, err := uc.Insert(ctx, "Met Sarah", model.SourceText)
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, model.TagIngestionFailed))

			memories, err := repo.ListMemories(ctx)
			gt.NoError(t, err)
			gt.A(t, memories).Length(0)
		})
	}
}

func TestInsertWriteFailure(t *testing.T) {
	repo := newMockRepo()
	repo.putFn = func(ctx context.Context, memory *model.Memory) error {
		return goerr.New("deadline exceeded", goerr.T(model.TagStoreUnavailable))
	}
	uc := memory.New(repo, &mockEmbedder{}, &mockGenerator{}, &mockExtractor{})

	_, err := uc.Insert(context.Background(), "Met Sarah", model.SourceText)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.TagIngestionFailed))
}

func TestInsertCapturePolicy(t *testing.T) {
	policy := &mockPolicy{
		evaluateFn: func(ctx context.Context, text string, source model.Source) ([]string, error) {
			if strings.Contains(text, "password") {
				return []string{"notes must not contain credentials"}, nil
			}
			return nil, nil
		},
	}

	repo := newMockRepo()
	embedder := &mockEmbedder{}
	extractor := &mockExtractor{}
	uc := memory.New(repo, embedder, &mockGenerator{}, extractor, memory.WithCapturePolicy(policy))
	ctx := context.Background()

	_, err := uc.Insert(ctx, "my password is hunter2", model.SourceText)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.TagInvalidInput))
	gt.Equal(t, embedder.calls.Load(), int32(0))
	gt.Equal(t, extractor.calls.Load(), int32(0))

	_, err = uc.Insert(ctx, "lunch with Sarah", model.SourceText)
	gt.NoError(t, err)
}

func TestInsertAudio(t *testing.T) {
	repo := newMockRepo()
	archive := &mockArchive{}
	transcriber := &mockTranscriber{
		transcribeFn: func(ctx context.Context, audio io.Reader, filename string) (string, error) {
			data, err := io.ReadAll(audio)
			gt.NoError(t, err)
			gt.Equal(t, string(data), "RIFF....WAVE")
			gt.Equal(t, filename, "/tmp/note.wav")
			return "Met Sarah about the roadmap", nil
		},
	}
	uc := memory.New(repo, &mockEmbedder{}, &mockGenerator{}, &mockExtractor{},
		memory.WithTranscriber(transcriber),
		memory.WithArchive(archive),
	)
	ctx := context.Background()

	saved, err := uc.InsertAudio(ctx, strings.NewReader("RIFF....WAVE"), "/tmp/note.wav")
	gt.NoError(t, err)
	gt.Equal(t, saved.Source, model.SourceVoice)
	gt.Equal(t, saved.RawText, "Met Sarah about the roadmap")

	key := "audio/" + string(saved.ID) + "/note.wav"
	gt.Equal(t, saved.AudioURI, "gs://test-bucket/"+key)
	gt.Map(t, archive.objects).HasKey(key)
	gt.Equal(t, string(archive.objects[key]), "RIFF....WAVE")

	got, err := repo.GetMemory(ctx, saved.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.AudioURI, saved.AudioURI)
}

func TestInsertAudioFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no transcriber", func(t *testing.T) {
		uc := memory.New(newMockRepo(), &mockEmbedder{}, &mockGenerator{}, &mockExtractor{})
		_, err := uc.InsertAudio(ctx, strings.NewReader("data"), "note.wav")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.TagIngestionFailed))
	})

	t.Run("transcription fails", func(t *testing.T) {
		repo := newMockRepo()
		archive := &mockArchive{}
		uc := memory.New(repo, &mockEmbedder{}, &mockGenerator{}, &mockExtractor{},
			memory.WithArchive(archive),
			memory.WithTranscriber(&mockTranscriber{
				transcribeFn: func(ctx context.Context, audio io.Reader, filename string) (string, error) {
					return "", goerr.New("unsupported format", goerr.T(model.TagProviderError))
				},
			}),
		)

		_, err := uc.InsertAudio(ctx, strings.NewReader("data"), "note.wav")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.TagIngestionFailed))
		gt.Equal(t, len(archive.objects), 0)
	})

	t.Run("silent recording", func(t *testing.T) {
		uc := memory.New(newMockRepo(), &mockEmbedder{}, &mockGenerator{}, &mockExtractor{},
			memory.WithTranscriber(&mockTranscriber{
				transcribeFn: func(ctx context.Context, audio io.Reader, filename string) (string, error) {
					return " ", nil
				},
			}),
		)

		_, err := uc.InsertAudio(ctx, strings.NewReader("data"), "note.wav")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.TagInvalidInput))
	})
}
