package memory

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Insert captures a note: it derives the summary and entities, computes the
// embedding and stores the assembled memory. Nothing is stored unless every
// step succeeds.
func (u *UseCase) Insert(ctx context.Context, rawText string, source model.Source) (*model.Memory, error) {
	return u.insert(ctx, rawText, source, nil)
}

// InsertAudio transcribes a voice recording and captures the transcript as
// a voice note. When an archive is configured, the recording is stored under
// audio/<memory-id>/<filename> and linked from the memory.
func (u *UseCase) InsertAudio(ctx context.Context, audio io.Reader, filename string) (*model.Memory, error) {
	if u.transcriber == nil {
		return nil, goerr.New("transcriber is not configured", goerr.T(model.TagIngestionFailed))
	}

	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read audio", goerr.V("filename", filename), goerr.T(model.TagIngestionFailed))
	}
	if len(data) == 0 {
		return nil, goerr.New("audio is empty", goerr.V("filename", filename), goerr.T(model.TagInvalidInput))
	}

	transcript, err := u.transcriber.Transcribe(ctx, bytes.NewReader(data), filename)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to transcribe audio", goerr.V("filename", filename), goerr.T(model.TagIngestionFailed))
	}

	var archiveFn func(ctx context.Context, id model.MemoryID) (string, error)
	if u.archive != nil {
		archiveFn = func(ctx context.Context, id model.MemoryID) (string, error) {
			base := filepath.Base(filename)
			contentType := mime.TypeByExtension(filepath.Ext(base))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			return u.archive.Upload(ctx, path.Join("audio", string(id), base), bytes.NewReader(data), contentType)
		}
	}

	return u.insert(ctx, transcript, model.SourceVoice, archiveFn)
}

func (u *UseCase) insert(
	ctx context.Context,
	rawText string,
	source model.Source,
	archiveFn func(ctx context.Context, id model.MemoryID) (string, error),
) (*model.Memory, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, goerr.New("text is empty", goerr.T(model.TagInvalidInput))
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "memory.Insert")
	defer span.End()
	span.SetAttributes(attribute.String("source", string(source)))

	if u.policy != nil {
		reasons, err := u.policy.Evaluate(ctx, rawText, source)
		if err != nil {
			span.RecordError(err)
			return nil, goerr.Wrap(err, "failed to evaluate capture policy", goerr.T(model.TagIngestionFailed))
		}
		if len(reasons) > 0 {
			span.SetStatus(codes.Error, "denied by policy")
			return nil, goerr.New("note denied by capture policy",
				goerr.V("reasons", reasons),
				goerr.T(model.TagInvalidInput))
		}
	}

	var (
		extraction *model.Extraction
		embedding  []float32
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		resp, err := u.extractor.Extract(egCtx, rawText)
		if err != nil {
			return goerr.Wrap(err, "failed to extract entities")
		}
		if resp == nil {
			return goerr.New("extractor returned no result")
		}
		extraction = resp
		return nil
	})
	eg.Go(func() error {
		vec, err := u.embedder.Embed(egCtx, rawText)
		if err != nil {
			return goerr.Wrap(err, "failed to embed note")
		}
		embedding = vec
		return nil
	})

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrichment failed")
		return nil, goerr.Wrap(err, "failed to ingest note", goerr.T(model.TagIngestionFailed))
	}

	extraction.Normalize()
	memory := &model.Memory{
		ID:        model.NewMemoryID(),
		RawText:   rawText,
		Source:    source,
		Summary:   extraction.Summary,
		People:    extraction.People,
		Tasks:     extraction.Tasks,
		Topics:    extraction.Topics,
		Decisions: extraction.Decisions,
		CreatedAt: u.now(),
		Embedding: embedding,
	}

	if err := memory.Validate(); err != nil {
		span.RecordError(err)
		return nil, goerr.Wrap(err, "assembled memory is incomplete", goerr.T(model.TagIngestionFailed))
	}

	if archiveFn != nil {
		uri, err := archiveFn(ctx, memory.ID)
		if err != nil {
			span.RecordError(err)
			return nil, goerr.Wrap(err, "failed to archive audio", goerr.V("id", memory.ID), goerr.T(model.TagIngestionFailed))
		}
		memory.AudioURI = uri
	}

	if err := u.repo.PutMemory(ctx, memory); err != nil {
		span.RecordError(err)
		return nil, goerr.Wrap(err, "failed to save memory", goerr.V("id", memory.ID), goerr.T(model.TagIngestionFailed))
	}

	logging.From(ctx).Info("memory saved",
		"id", memory.ID,
		"source", memory.Source,
		"people", len(memory.People),
		"tasks", len(memory.Tasks),
	)

	return memory, nil
}
