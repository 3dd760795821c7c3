package intelligence

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/llm"
)

// MoodInterpreter maps a free-text mood ("algo de miedo pero divertido") to
// catalog genre ids that can be used as an explicit sampling filter.
//
// It supports two modes:
//   - LLM-based: asks the model to pick genres from the catalog list
//   - Rule-based: matches genre names inside the text, accent-insensitive
//
// Example usage:
//
//	interp := NewMoodInterpreter(provider)
//	ids, err := interp.Interpret(ctx, "something scary", genres)
type MoodInterpreter struct {
	// llm may be nil, in which case only rule-based matching is used.
	llm llm.Provider

	// maxGenres caps the number of returned ids.
	maxGenres int
}

// NewMoodInterpreter creates an interpreter returning at most DefaultTopGenres ids.
func NewMoodInterpreter(provider llm.Provider) *MoodInterpreter {
	return &MoodInterpreter{
		llm:       provider,
		maxGenres: DefaultTopGenres,
	}
}

// Interpret returns genre ids drawn from genres, best match first.
//
// The LLM is consulted first when configured; if it fails or returns nothing
// usable the rule-based matcher runs. An LLM error is returned only when the
// fallback also finds nothing.
func (m *MoodInterpreter) Interpret(ctx context.Context, mood string, genres []catalog.Genre) ([]int, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" || len(genres) == 0 {
		return []int{}, nil
	}

	var llmErr error
	if m.llm != nil {
		ids, err := m.interpretWithLLM(ctx, mood, genres)
		if err == nil && len(ids) > 0 {
			return ids, nil
		}
		llmErr = err
	}

	ids := m.matchNames(mood, genres)
	if len(ids) == 0 && llmErr != nil {
		return nil, fmt.Errorf("interpret mood: %w", llmErr)
	}
	return ids, nil
}

func (m *MoodInterpreter) interpretWithLLM(ctx context.Context, mood string, genres []catalog.Genre) ([]int, error) {
	var list strings.Builder
	for _, g := range genres {
		fmt.Fprintf(&list, "%d: %s\n", g.ID, g.Name)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(moodPrompt, m.maxGenres)},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Genres:\n%s\nMood: %s", list.String(), mood)},
	}
	response, err := m.llm.GenerateWithMessages(ctx, messages, llm.WithTemperature(0), llm.WithMaxTokens(100))
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	return m.parseResponse(response, genres)
}

const moodPrompt = `You pick movie and TV genres for a viewer's mood.
You receive the list of available genres as "id: name" lines and a free-text mood in any language.
Return JSON only: {"genre_ids": [id, ...]} with at most %d ids from the list, best match first.
If nothing fits, return {"genre_ids": []}.`

// parseResponse keeps only ids present in genres, in response order, without duplicates.
func (m *MoodInterpreter) parseResponse(response string, genres []catalog.Genre) ([]int, error) {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)
	if start, end := strings.Index(response, "{"), strings.LastIndex(response, "}"); start >= 0 && end > start {
		response = response[start : end+1]
	}

	var result struct {
		GenreIDs []int `json:"genre_ids"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	known := make(map[int]struct{}, len(genres))
	for _, g := range genres {
		known[g.ID] = struct{}{}
	}
	out := make([]int, 0, len(result.GenreIDs))
	seen := make(map[int]struct{})
	for _, id := range result.GenreIDs {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == m.maxGenres {
			break
		}
	}
	return out, nil
}

// matchNames returns genres whose normalised name occurs in the normalised mood.
func (m *MoodInterpreter) matchNames(mood string, genres []catalog.Genre) []int {
	text := normalize(mood)
	out := []int{}
	for _, g := range genres {
		name := normalize(g.Name)
		if name == "" || !strings.Contains(text, name) {
			continue
		}
		out = append(out, g.ID)
		if len(out) == m.maxGenres {
			break
		}
	}
	return out
}

// normalize lowercases s and strips diacritics, so "Acción" matches "accion".
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
