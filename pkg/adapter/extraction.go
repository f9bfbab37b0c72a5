package adapter

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
	"text/template"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/extract.md
var extractPromptRaw string

var extractPromptTmpl = template.Must(template.New("extract").Parse(extractPromptRaw))

var (
	extractionSchemaOnce sync.Once
	extractionSchema     *jsonschema.Resolved
	extractionSchemaErr  error
)

func buildExtractPrompt(text string, jsonOnly bool) (string, error) {
	var buf bytes.Buffer
	if err := extractPromptTmpl.Execute(&buf, map[string]any{
		"Text":     text,
		"JSONOnly": jsonOnly,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute extract prompt template")
	}
	return buf.String(), nil
}

func resolvedExtractionSchema() (*jsonschema.Resolved, error) {
	extractionSchemaOnce.Do(func() {
		schema, err := jsonschema.For[model.Extraction](nil)
		if err != nil {
			extractionSchemaErr = goerr.Wrap(err, "failed to infer extraction schema")
			return
		}
		extractionSchema, extractionSchemaErr = schema.Resolve(nil)
		if extractionSchemaErr != nil {
			extractionSchemaErr = goerr.Wrap(extractionSchemaErr, "failed to resolve extraction schema")
		}
	})
	return extractionSchema, extractionSchemaErr
}

// decodeExtraction validates raw model output against the extraction schema
// and decodes it. Markdown code fences around the JSON are tolerated.
func decodeExtraction(raw string) (*model.Extraction, error) {
	raw = stripCodeFence(raw)

	var instance map[string]any
	if err := json.Unmarshal([]byte(raw), &instance); err != nil {
		return nil, goerr.Wrap(err, "extraction is not a JSON object", goerr.V("json", raw), goerr.T(model.TagProviderError))
	}

	resolved, err := resolvedExtractionSchema()
	if err != nil {
		return nil, err
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, goerr.Wrap(err, "extraction does not match schema", goerr.V("json", raw), goerr.T(model.TagProviderError))
	}

	var extraction model.Extraction
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		return nil, goerr.Wrap(err, "failed to decode extraction", goerr.V("json", raw), goerr.T(model.TagProviderError))
	}
	extraction.Normalize()

	if extraction.Summary == "" {
		return nil, goerr.New("extraction has an empty summary", goerr.V("json", raw), goerr.T(model.TagProviderError))
	}

	return &extraction, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
