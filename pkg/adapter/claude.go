package adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"
)

// Claude generates text and extractions with the Anthropic Messages API
type Claude interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Extract(ctx context.Context, text string) (*model.Extraction, error)
}

type claudeClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// ClaudeOption is a functional option for the Claude client
type ClaudeOption func(*claudeClient)

// WithClaudeModel overrides the default model
func WithClaudeModel(model string) ClaudeOption {
	return func(c *claudeClient) {
		c.model = anthropic.Model(model)
	}
}

// WithClaudeMaxTokens overrides the maximum number of generated tokens
func WithClaudeMaxTokens(n int64) ClaudeOption {
	return func(c *claudeClient) {
		c.maxTokens = n
	}
}

// NewClaude creates a new Claude API client
func NewClaude(apiKey string, opts ...ClaudeOption) Claude {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	c := &claudeClient{
		client:    &client,
		model:     anthropic.Model("claude-sonnet-4-20250514"),
		maxTokens: 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *claudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", wrapClaudeError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(b.Text)
		}
	}

	if text.Len() == 0 {
		return "", goerr.New("empty text from claude",
			goerr.V("stop_reason", message.StopReason),
			goerr.T(model.TagProviderError))
	}

	return text.String(), nil
}

func (c *claudeClient) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	prompt, err := buildExtractPrompt(text, true)
	if err != nil {
		return nil, err
	}

	raw, err := c.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return decodeExtraction(raw)
}

func wrapClaudeError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return goerr.Wrap(err, "claude API error",
			goerr.V("status", apiErr.StatusCode),
			goerr.T(model.TagProviderError))
	}
	return goerr.Wrap(err, "failed to call claude", goerr.T(model.TagProviderError))
}
