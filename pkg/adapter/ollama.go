package adapter

import (
	"context"
	"net/http"
	"net/url"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "nomic-embed-text"
)

// Ollama embeds text with a locally served model
type Ollama struct {
	client *api.Client
	model  string
}

func NewOllama(host, embeddingModel string) (*Ollama, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if embeddingModel == "" {
		embeddingModel = DefaultOllamaModel
	}

	uri, err := url.Parse(host)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid ollama host", goerr.V("host", host))
	}

	return &Ollama{
		client: api.NewClient(uri, http.DefaultClient),
		model:  embeddingModel,
	}, nil
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  o.model,
		Prompt: text,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed with ollama",
			goerr.V("model", o.model),
			goerr.T(model.TagProviderError))
	}
	if len(resp.Embedding) == 0 {
		return nil, goerr.New("empty embedding from ollama", goerr.V("model", o.model), goerr.T(model.TagProviderError))
	}

	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
