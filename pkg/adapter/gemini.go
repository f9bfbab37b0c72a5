package adapter

import (
	"context"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

type Gemini interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Extract(ctx context.Context, text string) (*model.Extraction, error)
}

type GeminiClient struct {
	client              *genai.Client
	generativeModel     string
	embeddingModel      string
	embeddingDimensions int32
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.generativeModel = model
	}
}

func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = model
	}
}

func WithEmbeddingDimensions(dim int) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingDimensions = int32(dim)
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client", goerr.T(model.TagProviderError))
	}

	g := &GeminiClient{
		client:              client,
		generativeModel:     "gemini-2.5-flash",
		embeddingModel:      "gemini-embedding-001",
		embeddingDimensions: 768,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.generativeModel, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.T(model.TagProviderError))
	}
	return resp, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &g.embeddingDimensions,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content", goerr.T(model.TagProviderError))
	}

	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.New("empty embedding from gemini", goerr.T(model.TagProviderError))
	}

	return resp.Embeddings[0].Values, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	resp, err := g.GenerateContent(ctx, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, config)
	if err != nil {
		return "", err
	}

	return responseText(resp)
}

func (g *GeminiClient) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	prompt, err := buildExtractPrompt(text, false)
	if err != nil {
		return nil, err
	}

	stringList := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: desc,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {
					Type:        genai.TypeString,
					Description: "One or two sentence summary of the note",
				},
				"people":    stringList("People mentioned in the note"),
				"tasks":     stringList("Action items and plans"),
				"topics":    stringList("Short topic labels"),
				"decisions": stringList("Decisions that were made"),
			},
			Required: []string{"summary", "people", "tasks", "topics", "decisions"},
		},
	}

	resp, err := g.GenerateContent(ctx, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, config)
	if err != nil {
		return nil, err
	}

	raw, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	return decodeExtraction(raw)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", goerr.New("invalid response structure from gemini", goerr.T(model.TagProviderError))
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}

	if text.Len() == 0 {
		return "", goerr.New("empty text from gemini", goerr.T(model.TagProviderError))
	}

	return text.String(), nil
}
