package memory

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EmptyAnswer is returned when no memory is relevant to the query
const EmptyAnswer = "I couldn't find any relevant memories for your query."

//go:embed prompt/answer.md
var answerPromptRaw string

var answerPromptTmpl = template.Must(template.New("answer").Funcs(template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"list": func(values []string) string {
		if len(values) == 0 {
			return "None"
		}
		return strings.Join(values, ", ")
	},
}).Parse(answerPromptRaw))

// BuildAnswerPrompt renders the synthesis prompt for query and memories
func BuildAnswerPrompt(query string, memories []*model.Memory) (string, error) {
	var buf bytes.Buffer
	if err := answerPromptTmpl.Execute(&buf, map[string]any{
		"Query":    query,
		"Memories": memories,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute answer prompt template")
	}
	return buf.String(), nil
}

// Synthesize generates a conversational answer to query grounded on
// memories. The generator is not called when memories is empty.
func (u *UseCase) Synthesize(ctx context.Context, query string, memories []*model.Memory) (string, error) {
	if len(memories) == 0 {
		return EmptyAnswer, nil
	}

	ctx, span := tracer.Start(ctx, "memory.Synthesize")
	defer span.End()
	span.SetAttributes(attribute.Int("memories", len(memories)))

	prompt, err := BuildAnswerPrompt(query, memories)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build answer prompt", goerr.T(model.TagSynthesisFailed))
	}

	answer, err := u.generator.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", goerr.Wrap(err, "failed to generate answer", goerr.T(model.TagSynthesisFailed))
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		span.SetStatus(codes.Error, "empty answer")
		return "", goerr.New("generator returned an empty answer", goerr.T(model.TagSynthesisFailed))
	}

	return answer, nil
}
