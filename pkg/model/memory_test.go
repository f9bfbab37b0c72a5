package model_test

import (
	"testing"
	"time"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func validMemory() *model.Memory {
	return &model.Memory{
		ID:        model.NewMemoryID(),
		RawText:   "Lunch with Sarah on Friday",
		Source:    model.SourceVoice,
		Summary:   "Lunch with Sarah",
		People:    []string{"Sarah"},
		Tasks:     []string{},
		Topics:    []string{},
		Decisions: []string{},
		CreatedAt: time.Now(),
		Embedding: []float32{0.1, 0.2},
	}
}

func TestNewMemoryIDIsUnique(t *testing.T) {
	a := model.NewMemoryID()
	b := model.NewMemoryID()
	gt.NotEqual(t, a, b)
	gt.N(t, len(a)).Equal(36)
}

func TestSourceValidate(t *testing.T) {
	for _, s := range []model.Source{model.SourceVoice, model.SourceText, model.SourceTool} {
		gt.NoError(t, s.Validate())
	}

	for _, s := range []model.Source{"", "mcp", "Voice"} {
		err := s.Validate()
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.TagInvalidInput))
	}
}

func TestMemoryValidate(t *testing.T) {
	gt.NoError(t, validMemory().Validate())

	testCases := map[string]func(m *model.Memory){
		"empty id":        func(m *model.Memory) { m.ID = "" },
		"blank raw text":  func(m *model.Memory) { m.RawText = " \n" },
		"unknown source":  func(m *model.Memory) { m.Source = "email" },
		"blank summary":   func(m *model.Memory) { m.Summary = "  " },
		"nil people":      func(m *model.Memory) { m.People = nil },
		"nil tasks":       func(m *model.Memory) { m.Tasks = nil },
		"nil topics":      func(m *model.Memory) { m.Topics = nil },
		"nil decisions":   func(m *model.Memory) { m.Decisions = nil },
		"empty embedding": func(m *model.Memory) { m.Embedding = nil },
		"zero created_at": func(m *model.Memory) { m.CreatedAt = time.Time{} },
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			m := validMemory()
			mutate(m)
			gt.Error(t, m.Validate())
		})
	}
}

func TestExtractionNormalize(t *testing.T) {
	e := &model.Extraction{
		Summary: "  Budget review  ",
		People:  []string{" Sarah ", "", "  "},
		Tasks:   nil,
	}
	e.Normalize()

	gt.Equal(t, e.Summary, "Budget review")
	gt.Equal(t, e.People, []string{"Sarah"})
	gt.V(t, e.Tasks).NotNil()
	gt.A(t, e.Tasks).Length(0)
	gt.V(t, e.Topics).NotNil()
	gt.V(t, e.Decisions).NotNil()
}
