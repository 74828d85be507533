package puzzle

import (
	"os"

	"gopkg.in/yaml.v3"

	"constellation-backend/internal/domain/graph"
	apperrors "constellation-backend/internal/errors"
)

// questionsFile is the on-disk shape of the curated question list, keyed
// by dataset category.
type questionsFile struct {
	Social []Question `yaml:"social"`
	Topic  []Question `yaml:"topic"`
}

// LoadQuestions reads the curated questions file. An empty path yields
// an empty map: curated rounds simply fall through to the randomized
// search.
func LoadQuestions(path string) (map[graph.Category][]Question, error) {
	out := make(map[graph.Category][]Question)
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewData("reading curated questions", err)
	}
	var file questionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.NewData("parsing curated questions", err)
	}

	out[graph.CategorySocial] = file.Social
	out[graph.CategoryTopic] = file.Topic
	return out, nil
}
