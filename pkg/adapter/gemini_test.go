package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/abhijitramesh/echovault/pkg/adapter"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

func setupGemini(t *testing.T) *adapter.GeminiClient {
	t.Helper()

	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT is not set")
	}

	client, err := adapter.NewGemini(context.Background(), projectID, "us-central1")
	gt.NoError(t, err)
	return client
}

func TestGenerateContent(t *testing.T) {
	client := setupGemini(t)
	ctx := context.Background()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: "Hello, what is the capital of France?"},
			},
		},
	}

	resp, err := client.GenerateContent(ctx, contents, nil)
	if err != nil {
		t.Fatal("failed to call GenerateContent", err)
	}

	if resp == nil ||
		len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 ||
		resp.Candidates[0].Content.Parts[0].Text == "" {
		t.Fatal("unexpected response")
	}

	t.Log("response:", resp.Candidates[0].Content.Parts[0].Text)
}

func TestGeminiEmbed(t *testing.T) {
	client := setupGemini(t)

	vec, err := client.Embed(context.Background(), "Met Sarah to discuss the Q3 roadmap")
	gt.NoError(t, err)
	gt.A(t, vec).Length(768)
}

func TestGeminiExtract(t *testing.T) {
	client := setupGemini(t)

	extraction, err := client.Extract(context.Background(), "Met Sarah today. We decided to ship the beta on Friday. I need to send her the report.")
	gt.NoError(t, err)
	gt.NotEqual(t, extraction.Summary, "")
	gt.A(t, extraction.People).Longer(0)
	gt.A(t, extraction.Tasks).Longer(0)
	t.Logf("extraction: %+v", extraction)
}
