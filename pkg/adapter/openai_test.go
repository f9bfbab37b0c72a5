package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/abhijitramesh/echovault/pkg/adapter"
	"github.com/m-mizutani/gt"
)

func TestOpenAIEmbed(t *testing.T) {
	apiKey := os.Getenv("TEST_OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("TEST_OPENAI_API_KEY is not set")
	}

	client := adapter.NewOpenAI(apiKey, adapter.WithOpenAIEmbeddingDimensions(256))
	vec, err := client.Embed(context.Background(), "Met Sarah to discuss the Q3 roadmap")
	gt.NoError(t, err)
	gt.A(t, vec).Length(256)
}

func TestOpenAITranscribe(t *testing.T) {
	apiKey := os.Getenv("TEST_OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("TEST_OPENAI_API_KEY is not set")
	}
	audioPath := os.Getenv("TEST_AUDIO_FILE")
	if audioPath == "" {
		t.Skip("TEST_AUDIO_FILE is not set")
	}

	f, err := os.Open(audioPath)
	gt.NoError(t, err)
	defer f.Close()

	client := adapter.NewOpenAI(apiKey)
	text, err := client.Transcribe(context.Background(), f, audioPath)
	gt.NoError(t, err)
	gt.NotEqual(t, text, "")
	t.Log("transcript:", text)
}
