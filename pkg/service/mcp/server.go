package mcp

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/usecase/memory"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName = "echovault"

	memoryAssistantPrompt = "memory-assistant"
)

//go:embed prompt/memory_assistant.md
var memoryAssistantText string

// MemoryUseCase is the subset of memory operations exposed as tools
type MemoryUseCase interface {
	Insert(ctx context.Context, rawText string, source model.Source) (*model.Memory, error)
	Search(ctx context.Context, query string) (*model.SearchResult, error)
	Tasks(ctx context.Context) ([]*model.Task, error)
	List(ctx context.Context, opts memory.ListOptions) ([]*model.Memory, error)
}

// Server exposes memories to agent hosts over the Model Context Protocol
type Server struct {
	uc     MemoryUseCase
	server *mcp.Server
}

type addMemoryParams struct {
	Text string `json:"text" jsonschema:"The memory content to store. Can be a thought, note, meeting summary, task, decision, reminder, plan, or any information to remember."`
}

type searchMemoriesParams struct {
	Query string `json:"query" jsonschema:"Natural language query to search memories. Examples: 'What tasks do I have?', 'What did I discuss with John?', 'What decisions have I made about the product?'"`
}

// NewServer creates an MCP server with the memory tools and prompts registered
func NewServer(uc MemoryUseCase, version string) *Server {
	s := &Server{
		uc: uc,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_memory",
		Description: "Add a new memory to the personal memory store. Use this when user wants to: save information, remember something, store a note, record a meeting, save a task, log a decision, or keep track of anything. Automatically extracts people, tasks, topics, and decisions from the content.",
	}, s.addMemory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_memories",
		Description: "Search through stored memories using natural language. Use this when user asks about: tasks, todos, plans, meetings, discussions, decisions, people they've talked to, or any past events/notes. Returns relevant memories and an AI-synthesized answer based on the query.",
	}, s.searchMemories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_tasks",
		Description: "Get all tasks, todos, action items, and plans extracted from memories. Use this when user asks about: tasks, todos, things to do, action items, plans, what needs to be done, upcoming work, or anything task-related.",
	}, s.getTasks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_memories",
		Description: "List all stored memories. Returns the most recent memories with their summaries, people mentioned, tasks, topics, and decisions.",
	}, s.listMemories)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        memoryAssistantPrompt,
		Description: "Activate memory-aware assistant mode",
	}, s.memoryAssistant)

	return s
}

// MCPServer returns the underlying SDK server
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// RunStdio serves a single host over stdin/stdout until ctx is done or the
// host disconnects
func (s *Server) RunStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves hosts over the streamable HTTP transport
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) addMemory(ctx context.Context, req *mcp.CallToolRequest, params *addMemoryParams) (*mcp.CallToolResult, any, error) {
	logging.From(ctx).Info("tool called", "tool", "add_memory", "text_length", len(params.Text))

	saved, err := s.uc.Insert(ctx, params.Text, model.SourceTool)
	if err != nil {
		return toolError(ctx, "add_memory", err, model.OperationSave), nil, nil
	}

	return textResult("Memory added successfully. Memory ID: " + string(saved.ID)), nil, nil
}

func (s *Server) searchMemories(ctx context.Context, req *mcp.CallToolRequest, params *searchMemoriesParams) (*mcp.CallToolResult, any, error) {
	logging.From(ctx).Info("tool called", "tool", "search_memories", "query_length", len(params.Query))

	result, err := s.uc.Search(ctx, params.Query)
	if err != nil {
		return toolError(ctx, "search_memories", err, model.OperationSearch), nil, nil
	}

	return textResult(FormatSearchResult(result)), nil, nil
}

func (s *Server) getTasks(ctx context.Context, req *mcp.CallToolRequest, params *struct{}) (*mcp.CallToolResult, any, error) {
	logging.From(ctx).Info("tool called", "tool", "get_tasks")

	tasks, err := s.uc.Tasks(ctx)
	if err != nil {
		return toolError(ctx, "get_tasks", err, model.OperationList), nil, nil
	}

	return textResult(FormatTasks(tasks)), nil, nil
}

func (s *Server) listMemories(ctx context.Context, req *mcp.CallToolRequest, params *struct{}) (*mcp.CallToolResult, any, error) {
	logging.From(ctx).Info("tool called", "tool", "list_memories")

	memories, err := s.uc.List(ctx, memory.ListOptions{})
	if err != nil {
		return toolError(ctx, "list_memories", err, model.OperationList), nil, nil
	}

	return textResult(FormatMemories(memories)), nil, nil
}

func (s *Server) memoryAssistant(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Activate memory-aware assistant mode",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: memoryAssistantText},
			},
		},
	}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// toolError logs err and returns a tool result carrying only a friendly message
func toolError(ctx context.Context, tool string, err error, op model.Operation) *mcp.CallToolResult {
	logging.From(ctx).Error("tool failed", "tool", tool, "error", err)

	result := textResult(model.UserMessage(err, op))
	result.IsError = true
	return result
}
