package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/abhijitramesh/echovault/pkg/adapter"
	"github.com/m-mizutani/gt"
)

func TestOllamaEmbed(t *testing.T) {
	host := os.Getenv("TEST_OLLAMA_HOST")
	if host == "" {
		t.Skip("TEST_OLLAMA_HOST is not set")
	}

	client, err := adapter.NewOllama(host, os.Getenv("TEST_OLLAMA_MODEL"))
	gt.NoError(t, err)

	vec, err := client.Embed(context.Background(), "Met Sarah to discuss the Q3 roadmap")
	gt.NoError(t, err)
	gt.A(t, vec).Longer(0)
}

func TestNewOllamaInvalidHost(t *testing.T) {
	_, err := adapter.NewOllama("http://[::1", "")
	gt.Error(t, err)
}
