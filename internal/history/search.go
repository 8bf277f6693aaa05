package history

import (
	"strings"
	"unicode"

	"github.com/diogo/geminichat/internal/models"
)

// SearchResult represents a search match in the saved chat
type SearchResult struct {
	Index        int // Position in the history
	Message      models.Message
	MatchSnippet string // Snippet where the term was found
}

// Search returns the messages whose text contains query, ignoring case
func Search(msgs []models.Message, query string) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var results []SearchResult
	for i, msg := range msgs {
		if msg.IsLoading {
			continue
		}
		if !strings.Contains(strings.ToLower(msg.Text), strings.ToLower(query)) {
			continue
		}
		results = append(results, SearchResult{
			Index:        i,
			Message:      msg,
			MatchSnippet: extractSnippet(msg.Text, query, 60),
		})
	}
	return results
}

// extractSnippet extracts up to maxLen runes around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	lower := toLowerRunes(runes)
	q := toLowerRunes([]rune(query))

	idx := indexRunes(lower, q)
	if idx == -1 {
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return content
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(q) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}

func toLowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
