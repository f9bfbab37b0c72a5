package mcp

import (
	"fmt"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/model"
)

const dateLayout = "2006-01-02"

// FormatSearchResult renders the answer followed by a short digest of each
// memory it was based on
func FormatSearchResult(result *model.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer: %s\n\n", result.Answer)

	if len(result.Memories) == 0 {
		return b.String()
	}

	b.WriteString("Related Memories:\n")
	for _, scored := range result.Memories {
		m := scored.Memory
		fmt.Fprintf(&b, "\n- %s", m.Summary)
		if len(m.People) > 0 {
			fmt.Fprintf(&b, " (People: %s)", strings.Join(m.People, ", "))
		}
		if len(m.Tasks) > 0 {
			fmt.Fprintf(&b, "\n  Tasks: %s", strings.Join(m.Tasks, "; "))
		}
	}

	return b.String()
}

func FormatTasks(tasks []*model.Task) string {
	if len(tasks) == 0 {
		return "No tasks found in your memories."
	}

	var b strings.Builder
	b.WriteString("Tasks from your memories:\n\n")
	for _, task := range tasks {
		fmt.Fprintf(&b, "- %s\n  (From: %s, Date: %s)\n\n", task.Task, task.Source, task.CreatedAt.Format(dateLayout))
	}
	return b.String()
}

func FormatMemories(memories []*model.Memory) string {
	if len(memories) == 0 {
		return "No memories stored yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d memories:\n\n", len(memories))
	for _, m := range memories {
		fmt.Fprintf(&b, "## %s\n", m.Summary)
		fmt.Fprintf(&b, "Date: %s | Source: %s\n", m.CreatedAt.Format(dateLayout), m.Source)

		if len(m.People) > 0 {
			fmt.Fprintf(&b, "People: %s\n", strings.Join(m.People, ", "))
		}
		if len(m.Tasks) > 0 {
			fmt.Fprintf(&b, "Tasks: %s\n", strings.Join(m.Tasks, "; "))
		}
		if len(m.Topics) > 0 {
			fmt.Fprintf(&b, "Topics: %s\n", strings.Join(m.Topics, ", "))
		}
		if len(m.Decisions) > 0 {
			fmt.Fprintf(&b, "Decisions: %s\n", strings.Join(m.Decisions, "; "))
		}

		b.WriteString("\n---\n\n")
	}
	return b.String()
}
