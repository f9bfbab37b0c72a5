package model

import (
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

type Source string

const (
	SourceVoice Source = "voice"
	SourceText  Source = "text"
	SourceTool  Source = "tool"
)

// Validate checks if the source is one of the known provenance tags
func (s Source) Validate() error {
	switch s {
	case SourceVoice, SourceText, SourceTool:
		return nil
	default:
		return goerr.New("invalid source", goerr.V("source", s), goerr.T(TagInvalidInput))
	}
}

// Memory represents a captured note with its derived fields. A Memory is
// written once by the ingestion pipeline and never mutated afterwards.
type Memory struct {
	ID      MemoryID
	RawText string
	Source  Source

	Summary   string
	People    []string
	Tasks     []string
	Topics    []string
	Decisions []string

	CreatedAt time.Time
	Embedding firestore.Vector32

	// AudioURI points to the archived recording of a voice note
	AudioURI string `firestore:",omitempty" json:",omitempty" yaml:",omitempty"`
}

// Validate checks that every derived field has been populated
func (m *Memory) Validate() error {
	if m.ID == "" {
		return goerr.New("memory ID is empty")
	}
	if strings.TrimSpace(m.RawText) == "" {
		return goerr.New("raw text is empty", goerr.V("id", m.ID))
	}
	if err := m.Source.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Summary) == "" {
		return goerr.New("summary is empty", goerr.V("id", m.ID))
	}
	if m.People == nil || m.Tasks == nil || m.Topics == nil || m.Decisions == nil {
		return goerr.New("entity lists are not populated", goerr.V("id", m.ID))
	}
	if len(m.Embedding) == 0 {
		return goerr.New("embedding is empty", goerr.V("id", m.ID))
	}
	if m.CreatedAt.IsZero() {
		return goerr.New("created_at is not set", goerr.V("id", m.ID))
	}
	return nil
}

// Extraction is the structured output of the entity extraction step
type Extraction struct {
	Summary   string   `json:"summary"`
	People    []string `json:"people"`
	Tasks     []string `json:"tasks"`
	Topics    []string `json:"topics"`
	Decisions []string `json:"decisions"`
}

// Normalize replaces missing lists with empty ones so that an extraction
// without any entity still yields a fully populated memory
func (e *Extraction) Normalize() {
	e.Summary = strings.TrimSpace(e.Summary)
	e.People = compact(e.People)
	e.Tasks = compact(e.Tasks)
	e.Topics = compact(e.Topics)
	e.Decisions = compact(e.Decisions)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Task is a single action item extracted from a memory
type Task struct {
	Task      string    `json:"task" yaml:"task"`
	MemoryID  MemoryID  `json:"memory_id" yaml:"memory_id"`
	Source    Source    `json:"source" yaml:"source"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
