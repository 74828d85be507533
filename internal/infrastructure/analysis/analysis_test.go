package analysis

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constellation-backend/internal/domain/graph"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain text untouched",
			raw:  "A connects to B through C.",
			want: "A connects to B through C.",
		},
		{
			name: "wrapping quotes stripped",
			raw:  `"A connects to B."`,
			want: "A connects to B.",
		},
		{
			name: "escaped quotes and newlines unescaped",
			raw:  `"@alice said \"hi\" to @bob.\nThey talk often."`,
			want: "@alice said \"hi\" to @bob.\nThey talk often.",
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "  \n\"text\"\n  ",
			want: "text",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "lone quote is not a wrapper",
			raw:  `"`,
			want: `"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestPayload_Social(t *testing.T) {
	req := Request{
		Category: graph.CategorySocial,
		Items: map[string]Item{
			"bob":   {Texts: []string{"hi @alice"}},
			"alice": {Texts: []string{"hi @bob", "again"}},
		},
	}

	body, err := payload(req, 0)
	require.NoError(t, err)

	var decoded map[string]struct {
		Tweets []string `json:"tweets"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, []string{"hi @bob", "again"}, decoded["alice"].Tweets)
	assert.Equal(t, []string{"hi @alice"}, decoded["bob"].Tweets)
}

func TestPayload_TopicTruncatesText(t *testing.T) {
	long := strings.Repeat("x", 5000)
	req := Request{
		Category: graph.CategoryTopic,
		Items: map[string]Item{
			"Jazz": {Summary: "a genre", Texts: []string{long}},
		},
	}

	body, err := payload(req, 1000)
	require.NoError(t, err)

	var decoded map[string]struct {
		Summary string `json:"summary"`
		Text    string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Len(t, decoded["Jazz"].Text, 1000)
	assert.Equal(t, "a genre", decoded["Jazz"].Summary)
}

func TestPayload_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 10)
	req := Request{
		Category: graph.CategoryTopic,
		Items: map[string]Item{
			"Jazz": {Texts: []string{long}},
		},
	}

	body, err := payload(req, 7)
	require.NoError(t, err)

	var decoded map[string]struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	text := decoded["Jazz"].Text
	assert.True(t, utf8.ValidString(text), "truncation must not split a rune")
	assert.Equal(t, strings.Repeat("é", 7), text)
}

func TestInstructions_PerCategory(t *testing.T) {
	assert.Contains(t, instructions(graph.CategorySocial), "tweets")
	assert.Contains(t, instructions(graph.CategoryTopic), "topics")
}
