package memory

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// MatchKeywords returns the memories that mention the query, newest first,
// at most limit entries. A memory matches when the lower-cased query occurs
// in any of its entity lists, its summary or its raw text, or when one of
// its people contains a capitalized word of the query.
func MatchKeywords(query string, memories []*model.Memory, limit int) []*model.Memory {
	queryLower := strings.ToLower(query)
	names := potentialNames(query)

	var matches []*model.Memory
	for _, m := range memories {
		if matchMemory(m, queryLower, names) {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// potentialNames picks words longer than two characters that start with an
// upper-case letter
func potentialNames(query string) []string {
	var names []string
	for _, word := range strings.Fields(query) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		if unicode.IsUpper(first) {
			names = append(names, strings.ToLower(word))
		}
	}
	return names
}

func matchMemory(m *model.Memory, queryLower string, names []string) bool {
	for _, person := range m.People {
		p := strings.ToLower(person)
		if strings.Contains(p, queryLower) {
			return true
		}
		for _, name := range names {
			if strings.Contains(p, name) {
				return true
			}
		}
	}

	for _, list := range [][]string{m.Topics, m.Tasks, m.Decisions} {
		if containsAny(list, queryLower) {
			return true
		}
	}

	return strings.Contains(strings.ToLower(m.Summary), queryLower) ||
		strings.Contains(strings.ToLower(m.RawText), queryLower)
}

func containsAny(values []string, queryLower string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), queryLower) {
			return true
		}
	}
	return false
}

func (u *UseCase) keywordSearch(ctx context.Context, query string) ([]*model.Memory, error) {
	ctx, span := tracer.Start(ctx, "memory.keywordSearch")
	defer span.End()

	memories, err := u.repo.ListMemories(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, goerr.Wrap(err, "failed to load memories for keyword search", goerr.T(model.TagStoreUnavailable))
	}

	return MatchKeywords(query, memories, maxResults), nil
}
