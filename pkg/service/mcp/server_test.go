package mcp_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/repository"
	"github.com/abhijitramesh/echovault/pkg/service/mcp"
	"github.com/abhijitramesh/echovault/pkg/usecase/memory"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type mockUseCase struct {
	insertFn func(ctx context.Context, rawText string, source model.Source) (*model.Memory, error)
	searchFn func(ctx context.Context, query string) (*model.SearchResult, error)
	tasksFn  func(ctx context.Context) ([]*model.Task, error)
	listFn   func(ctx context.Context, opts memory.ListOptions) ([]*model.Memory, error)
}

func (m *mockUseCase) Insert(ctx context.Context, rawText string, source model.Source) (*model.Memory, error) {
	return m.insertFn(ctx, rawText, source)
}

func (m *mockUseCase) Search(ctx context.Context, query string) (*model.SearchResult, error) {
	return m.searchFn(ctx, query)
}

func (m *mockUseCase) Tasks(ctx context.Context) ([]*model.Task, error) {
	return m.tasksFn(ctx)
}

func (m *mockUseCase) List(ctx context.Context, opts memory.ListOptions) ([]*model.Memory, error) {
	return m.listFn(ctx, opts)
}

func connect(t *testing.T, uc mcp.MemoryUseCase) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(uc, "test")
	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	serverSession, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	gt.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	gt.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

func callText(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	gt.NoError(t, err)
	gt.A(t, result.Content).Length(1)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	gt.True(t, ok)
	return text.Text, result.IsError
}

var createdAt = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestListTools(t *testing.T) {
	session := connect(t, &mockUseCase{})

	result, err := session.ListTools(context.Background(), nil)
	gt.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	gt.Equal(t, len(names), 4)
	gt.True(t, names["add_memory"])
	gt.True(t, names["search_memories"])
	gt.True(t, names["get_tasks"])
	gt.True(t, names["list_memories"])
}

func TestAddMemory(t *testing.T) {
	var got string
	uc := &mockUseCase{
		insertFn: func(ctx context.Context, rawText string, source model.Source) (*model.Memory, error) {
			got = rawText
			gt.Equal(t, source, model.SourceTool)
			return &model.Memory{ID: "mem-1"}, nil
		},
	}
	session := connect(t, uc)

	text, isError := callText(t, session, "add_memory", map[string]any{"text": "Lunch with Sarah"})
	gt.False(t, isError)
	gt.Equal(t, text, "Memory added successfully. Memory ID: mem-1")
	gt.Equal(t, got, "Lunch with Sarah")
}

func TestAddMemoryFailureHidesDetails(t *testing.T) {
	uc := &mockUseCase{
		insertFn: func(ctx context.Context, rawText string, source model.Source) (*model.Memory, error) {
			return nil, goerr.New("upstream said: invalid api key sk-secret", goerr.T(model.TagIngestionFailed))
		},
	}
	session := connect(t, uc)

	text, isError := callText(t, session, "add_memory", map[string]any{"text": "Lunch with Sarah"})
	gt.True(t, isError)
	gt.Equal(t, text, "Sorry, I could not save the memory. Please try again.")
	gt.S(t, text).NotContains("sk-secret")
}

func TestSearchMemories(t *testing.T) {
	uc := &mockUseCase{
		searchFn: func(ctx context.Context, query string) (*model.SearchResult, error) {
			gt.Equal(t, query, "What did Sarah say?")
			return &model.SearchResult{
				Answer: "Sarah wants the report by Friday.",
				Memories: []*model.ScoredMemory{
					{
						Memory: &model.Memory{
							Summary: "Roadmap sync",
							People:  []string{"Sarah", "Tom"},
							Tasks:   []string{"send the report", "book a room"},
						},
						Score:  0.92,
						Origin: model.OriginSemantic,
					},
					{
						Memory: &model.Memory{Summary: "Coffee chat"},
						Score:  0.7,
						Origin: model.OriginLexical,
					},
				},
			}, nil
		},
	}
	session := connect(t, uc)

	text, isError := callText(t, session, "search_memories", map[string]any{"query": "What did Sarah say?"})
	gt.False(t, isError)
	gt.Equal(t, text, "Answer: Sarah wants the report by Friday.\n\n"+
		"Related Memories:\n"+
		"\n- Roadmap sync (People: Sarah, Tom)\n  Tasks: send the report; book a room"+
		"\n- Coffee chat")
}

func TestToolLogsOmitNoteText(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	logging.SetDefault(logging.New("debug", buf))

	uc := &mockUseCase{
		searchFn: func(ctx context.Context, query string) (*model.SearchResult, error) {
			return &model.SearchResult{Answer: "ok", Memories: []*model.ScoredMemory{}}, nil
		},
		insertFn: func(ctx context.Context, rawText string, source model.Source) (*model.Memory, error) {
			return &model.Memory{ID: "m-1"}, nil
		},
	}
	session := connect(t, uc)

	_, isError := callText(t, session, "search_memories", map[string]any{"query": "salary talk with Priya"})
	gt.False(t, isError)
	_, isError = callText(t, session, "add_memory", map[string]any{"text": "Priya asked about the bonus"})
	gt.False(t, isError)

	output := buf.String()
	gt.S(t, output).Contains("search_memories")
	gt.S(t, output).Contains("query_length")
	gt.S(t, output).NotContains("Priya")
}

func TestSearchMemoriesEmptyQuery(t *testing.T) {
	uc := &mockUseCase{
		searchFn: func(ctx context.Context, query string) (*model.SearchResult, error) {
			return nil, goerr.New("query is empty", goerr.T(model.TagInvalidInput))
		},
	}
	session := connect(t, uc)

	text, isError := callText(t, session, "search_memories", map[string]any{"query": ""})
	gt.True(t, isError)
	gt.Equal(t, text, "Please provide a question to search your memories.")
}

func TestGetTasks(t *testing.T) {
	t.Run("tasks found", func(t *testing.T) {
		uc := &mockUseCase{
			tasksFn: func(ctx context.Context) ([]*model.Task, error) {
				return []*model.Task{
					{Task: "send the report", MemoryID: "a", Source: model.SourceVoice, CreatedAt: createdAt},
				}, nil
			},
		}
		session := connect(t, uc)

		text, isError := callText(t, session, "get_tasks", map[string]any{})
		gt.False(t, isError)
		gt.Equal(t, text, "Tasks from your memories:\n\n- send the report\n  (From: voice, Date: 2025-06-01)\n\n")
	})

	t.Run("no tasks", func(t *testing.T) {
		uc := &mockUseCase{
			tasksFn: func(ctx context.Context) ([]*model.Task, error) {
				return nil, nil
			},
		}
		session := connect(t, uc)

		text, _ := callText(t, session, "get_tasks", map[string]any{})
		gt.Equal(t, text, "No tasks found in your memories.")
	})
}

func TestListMemories(t *testing.T) {
	t.Run("memories found", func(t *testing.T) {
		uc := &mockUseCase{
			listFn: func(ctx context.Context, opts memory.ListOptions) ([]*model.Memory, error) {
				return []*model.Memory{
					{
						Summary:   "Roadmap sync",
						Source:    model.SourceText,
						People:    []string{"Sarah"},
						Tasks:     []string{"send the report"},
						Topics:    []string{"roadmap", "q3"},
						Decisions: []string{},
						CreatedAt: createdAt,
					},
				}, nil
			},
		}
		session := connect(t, uc)

		text, isError := callText(t, session, "list_memories", map[string]any{})
		gt.False(t, isError)
		gt.Equal(t, text, "Found 1 memories:\n\n"+
			"## Roadmap sync\n"+
			"Date: 2025-06-01 | Source: text\n"+
			"People: Sarah\n"+
			"Tasks: send the report\n"+
			"Topics: roadmap, q3\n"+
			"\n---\n\n")
	})

	t.Run("store unavailable", func(t *testing.T) {
		uc := &mockUseCase{
			listFn: func(ctx context.Context, opts memory.ListOptions) ([]*model.Memory, error) {
				return nil, goerr.New("connection refused", goerr.T(model.TagStoreUnavailable))
			},
		}
		session := connect(t, uc)

		text, isError := callText(t, session, "list_memories", map[string]any{})
		gt.True(t, isError)
		gt.Equal(t, text, "Sorry, I could not load your memories. Please try again.")
	})
}

func TestMemoryAssistantPrompt(t *testing.T) {
	session := connect(t, &mockUseCase{})

	result, err := session.GetPrompt(context.Background(), &mcpsdk.GetPromptParams{
		Name: "memory-assistant",
	})
	gt.NoError(t, err)
	gt.A(t, result.Messages).Length(1)

	text, ok := result.Messages[0].Content.(*mcpsdk.TextContent)
	gt.True(t, ok)
	gt.S(t, text.Text).Contains("search_memories")
	gt.S(t, text.Text).Contains("AUTOMATICALLY")
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "You have lunch with Sarah.", nil
}

type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	return &model.Extraction{
		Summary: "Lunch with Sarah",
		People:  []string{"Sarah"},
		Tasks:   []string{"book a table"},
	}, nil
}

func TestHTTPTransport(t *testing.T) {
	ctx := context.Background()

	uc := memory.New(repository.NewMemory(), stubEmbedder{}, stubGenerator{}, stubExtractor{})
	server := mcp.NewServer(uc, "test")

	testServer := httptest.NewServer(server.HTTPHandler())
	defer testServer.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcpsdk.StreamableClientTransport{Endpoint: testServer.URL}, nil)
	gt.NoError(t, err)
	defer session.Close()

	text, isError := callText(t, session, "add_memory", map[string]any{"text": "Lunch with Sarah tomorrow"})
	gt.False(t, isError)
	gt.S(t, text).Contains("Memory added successfully. Memory ID: ")

	text, isError = callText(t, session, "search_memories", map[string]any{"query": "Sarah"})
	gt.False(t, isError)
	gt.S(t, text).Contains("Answer: You have lunch with Sarah.")
	gt.S(t, text).Contains("- Lunch with Sarah (People: Sarah)\n  Tasks: book a table")

	text, _ = callText(t, session, "get_tasks", map[string]any{})
	gt.S(t, text).Contains("- book a table\n  (From: tool, Date: ")
}
