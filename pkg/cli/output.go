package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// memoryView is the printable form of a memory. Embeddings are omitted.
type memoryView struct {
	ID        string    `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Summary   string    `json:"summary" yaml:"summary"`
	People    []string  `json:"people" yaml:"people"`
	Tasks     []string  `json:"tasks" yaml:"tasks"`
	Topics    []string  `json:"topics" yaml:"topics"`
	Decisions []string  `json:"decisions" yaml:"decisions"`
	RawText   string    `json:"raw_text" yaml:"raw_text"`
	AudioURI  string    `json:"audio_uri,omitempty" yaml:"audio_uri,omitempty"`
}

func newMemoryView(m *model.Memory) *memoryView {
	return &memoryView{
		ID:        string(m.ID),
		Source:    string(m.Source),
		CreatedAt: m.CreatedAt,
		Summary:   m.Summary,
		People:    m.People,
		Tasks:     m.Tasks,
		Topics:    m.Topics,
		Decisions: m.Decisions,
		RawText:   m.RawText,
		AudioURI:  m.AudioURI,
	}
}

func newMemoryViews(memories []*model.Memory) []*memoryView {
	views := make([]*memoryView, 0, len(memories))
	for _, m := range memories {
		views = append(views, newMemoryView(m))
	}
	return views
}

// render writes v in the requested format. text is used for the text format.
func render(w io.Writer, format string, v any, text func(w io.Writer) error) error {
	switch format {
	case formatText, "":
		return text(w)

	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return goerr.Wrap(err, "failed to encode json")
		}
		return nil

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return goerr.Wrap(err, "failed to encode yaml")
		}
		return enc.Close()

	default:
		return goerr.New("unsupported output format",
			goerr.V("format", format),
			goerr.V("supported", []string{formatText, formatJSON, formatYAML}))
	}
}

func writeMemory(w io.Writer, m *memoryView) {
	fmt.Fprintf(w, "ID:        %s\n", m.ID)
	fmt.Fprintf(w, "Source:    %s\n", m.Source)
	fmt.Fprintf(w, "Created:   %s\n", m.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Summary:   %s\n", m.Summary)
	writeList(w, "People", m.People)
	writeList(w, "Tasks", m.Tasks)
	writeList(w, "Topics", m.Topics)
	writeList(w, "Decisions", m.Decisions)
	if m.AudioURI != "" {
		fmt.Fprintf(w, "Audio:     %s\n", m.AudioURI)
	}
	fmt.Fprintf(w, "\n%s\n", m.RawText)
}

func writeList(w io.Writer, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(w, "%-10s %s\n", label+":", strings.Join(values, ", "))
}

func formatFlagUsage() string {
	return "Output format (" + strings.Join([]string{formatText, formatJSON, formatYAML}, ", ") + ")"
}
