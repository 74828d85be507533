// Package analysis calls the external service that produces a free-text
// description of how a set of selected nodes is connected, and
// normalizes its raw payload for the markdown renderer.
package analysis

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"constellation-backend/internal/domain/graph"
)

// Item is the analysis context for one selected node: its summary and
// whatever free text the dataset attached (tweets, article body).
type Item struct {
	Summary string   `json:"summary,omitempty"`
	Texts   []string `json:"texts,omitempty"`
}

// Request is one connection-analysis call: at least two selected nodes
// with their context.
type Request struct {
	Category graph.Category
	Items    map[string]Item
}

// Describer is the analysis-service port. Failure never affects
// selection state; callers log and surface an empty result.
type Describer interface {
	Describe(ctx context.Context, req Request) (string, error)
}

// instructions returns the per-category system prompt.
func instructions(category graph.Category) string {
	if category == graph.CategorySocial {
		return "The following are tweets between a set of users on Twitter, " +
			"provided as a dictionary where the keys are a username and the values " +
			"are a list of tweets that user sent. Given these tweets, write a " +
			"tweet-length analysis of how these users are connected, in a form " +
			"similar to \"@user1 ... @user2 ... who ... @user3 ... which ... @user4\"."
	}
	return "The following are a map of topics and their encyclopedia articles. " +
		"Given the information in these articles, write a brief summary of how " +
		"these topics are connected and related to each other."
}

// payload serializes the request context with stable key order.
func payload(req Request, maxTextChars int) (string, error) {
	type socialEntry struct {
		Tweets []string `json:"tweets"`
	}
	type topicEntry struct {
		Summary string `json:"summary"`
		Text    string `json:"text"`
	}

	keys := make([]string, 0, len(req.Items))
	for k := range req.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		item := req.Items[k]
		if req.Category == graph.CategorySocial {
			out[k] = socialEntry{Tweets: item.Texts}
			continue
		}
		text := strings.Join(item.Texts, "\n")
		if maxTextChars > 0 {
			// truncate on rune boundaries, never mid-sequence
			if r := []rune(text); len(r) > maxTextChars {
				text = string(r[:maxTextChars])
			}
		}
		out[k] = topicEntry{Summary: item.Summary, Text: text}
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Normalize cleans a raw analysis payload: services sometimes return
// the text quote-wrapped with escaped quotes and newlines.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.TrimSpace(s)
}
