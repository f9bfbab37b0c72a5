package memory_test

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/abhijitramesh/echovault/pkg/adapter"
	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/repository"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
	calls   atomic.Int32
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
	calls      atomic.Int32
	lastPrompt string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	m.lastPrompt = prompt
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "You talked with Sarah about the roadmap.", nil
}

type mockExtractor struct {
	extractFn func(ctx context.Context, text string) (*model.Extraction, error)
	calls     atomic.Int32
}

func (m *mockExtractor) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	m.calls.Add(1)
	if m.extractFn != nil {
		return m.extractFn(ctx, text)
	}
	return &model.Extraction{
		Summary:   "Talked with Sarah about the roadmap",
		People:    []string{"Sarah"},
		Tasks:     []string{"send the report"},
		Topics:    []string{"roadmap"},
		Decisions: []string{},
	}, nil
}

type mockTranscriber struct {
	transcribeFn func(ctx context.Context, audio io.Reader, filename string) (string, error)
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	return m.transcribeFn(ctx, audio, filename)
}

type mockArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (m *mockArchive) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.objects[key] = data
	m.types[key] = contentType
	return "gs://test-bucket/" + key, nil
}

type mockPolicy struct {
	evaluateFn func(ctx context.Context, text string, source model.Source) ([]string, error)
}

func (m *mockPolicy) Evaluate(ctx context.Context, text string, source model.Source) ([]string, error) {
	return m.evaluateFn(ctx, text, source)
}

// mockRepo wraps a working repository and overrides selected methods
type mockRepo struct {
	repository.Repository
	putFn    func(ctx context.Context, memory *model.Memory) error
	getFn    func(ctx context.Context, id model.MemoryID) (*model.Memory, error)
	listFn   func(ctx context.Context) ([]*model.Memory, error)
	searchFn func(ctx context.Context, embedding []float32, limit int) ([]*model.Neighbor, error)
}

func newMockRepo() *mockRepo {
	return &mockRepo{Repository: repository.NewMemory()}
}

func (m *mockRepo) PutMemory(ctx context.Context, memory *model.Memory) error {
	if m.putFn != nil {
		return m.putFn(ctx, memory)
	}
	return m.Repository.PutMemory(ctx, memory)
}

func (m *mockRepo) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return m.Repository.GetMemory(ctx, id)
}

func (m *mockRepo) ListMemories(ctx context.Context) ([]*model.Memory, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return m.Repository.ListMemories(ctx)
}

func (m *mockRepo) SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.Neighbor, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, embedding, limit)
	}
	return m.Repository.SearchSimilarMemories(ctx, embedding, limit)
}

type mockBigQuery struct {
	adapter.BigQuery
	ensureTableFn func(ctx context.Context, datasetID, table string, schema bigquery.Schema) error
	insertFn      func(ctx context.Context, datasetID, table string, rows any) error
}

func (m *mockBigQuery) EnsureTable(ctx context.Context, datasetID, table string, schema bigquery.Schema) error {
	return m.ensureTableFn(ctx, datasetID, table, schema)
}

func (m *mockBigQuery) Insert(ctx context.Context, datasetID, table string, rows any) error {
	return m.insertFn(ctx, datasetID, table, rows)
}

var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// newMemory builds a fully populated memory created minutes after baseTime
func newMemory(id string, minutes int, embedding []float32, fn ...func(m *model.Memory)) *model.Memory {
	m := &model.Memory{
		ID:        model.MemoryID(id),
		RawText:   "note " + id,
		Source:    model.SourceText,
		Summary:   "summary " + id,
		People:    []string{},
		Tasks:     []string{},
		Topics:    []string{},
		Decisions: []string{},
		CreatedAt: baseTime.Add(time.Duration(minutes) * time.Minute),
		Embedding: embedding,
	}
	for _, f := range fn {
		f(m)
	}
	return m
}
