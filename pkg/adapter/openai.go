package adapter

import (
	"context"
	"io"
	"mime"
	"path/filepath"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI embeds text and transcribes audio with the OpenAI API
type OpenAI interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type openaiClient struct {
	client              openai.Client
	embeddingModel      openai.EmbeddingModel
	embeddingDimensions int64
	transcriptionModel  openai.AudioModel
}

// OpenAIOption is a functional option for the OpenAI client
type OpenAIOption func(*openaiClient)

// WithOpenAIEmbeddingModel overrides the embedding model
func WithOpenAIEmbeddingModel(model string) OpenAIOption {
	return func(c *openaiClient) {
		c.embeddingModel = openai.EmbeddingModel(model)
	}
}

// WithOpenAIEmbeddingDimensions requests shortened embeddings. Zero keeps
// the model default.
func WithOpenAIEmbeddingDimensions(dim int) OpenAIOption {
	return func(c *openaiClient) {
		c.embeddingDimensions = int64(dim)
	}
}

func NewOpenAI(apiKey string, opts ...OpenAIOption) OpenAI {
	c := &openaiClient{
		client:             openai.NewClient(option.WithAPIKey(apiKey)),
		embeddingModel:     openai.EmbeddingModelTextEmbedding3Small,
		transcriptionModel: openai.AudioModelWhisper1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *openaiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: c.embeddingModel,
	}
	if c.embeddingDimensions > 0 {
		params.Dimensions = openai.Int(c.embeddingDimensions)
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create openai embedding",
			goerr.V("model", c.embeddingModel),
			goerr.T(model.TagProviderError))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, goerr.New("empty embedding from openai", goerr.T(model.TagProviderError))
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

func (c *openaiClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filepath.Base(filename), contentType),
		Model: c.transcriptionModel,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to transcribe audio",
			goerr.V("filename", filename),
			goerr.T(model.TagProviderError))
	}

	return resp.Text, nil
}
