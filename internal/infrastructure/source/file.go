package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"constellation-backend/internal/config"
	"constellation-backend/internal/domain/graph"
	apperrors "constellation-backend/internal/errors"
)

// FileLoader reads datasets from local JSONL files, the format the data
// pipeline's compaction step emits.
type FileLoader struct {
	datasets config.Datasets
	logger   *zap.Logger
}

// NewFileLoader creates a loader over the configured dataset paths.
func NewFileLoader(datasets config.Datasets, logger *zap.Logger) *FileLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileLoader{datasets: datasets, logger: logger}
}

// Load reads the dataset for the category.
func (l *FileLoader) Load(ctx context.Context, category graph.Category) (*Dataset, error) {
	switch category {
	case graph.CategorySocial:
		return l.loadSocial(ctx)
	case graph.CategoryTopic:
		return l.loadTopic(ctx)
	default:
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown category %q", category))
	}
}

// socialNodeRecord is one account row.
type socialNodeRecord struct {
	User      string  `json:"user"`
	Followers float64 `json:"followers"`
	Bio       string  `json:"bio,omitempty"`
}

// socialEdgeRecord is one interaction row: an ordered account pair with
// the tweets each side contributed to the interaction.
type socialEdgeRecord struct {
	User1       string   `json:"user1"`
	User2       string   `json:"user2"`
	Weight      float64  `json:"weight,omitempty"`
	User1Tweets []string `json:"user1_tweets,omitempty"`
	User2Tweets []string `json:"user2_tweets,omitempty"`
}

func (l *FileLoader) loadSocial(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{
		Category: graph.CategorySocial,
		Context:  make(map[string][]string),
	}

	err := readLines(ctx, l.datasets.Social.NodesPath, func(raw []byte) error {
		var rec socialNodeRecord
		if err := unmarshal(raw, &rec); err != nil {
			return err
		}
		ds.Nodes = append(ds.Nodes, graph.NodeInput{
			ID:         rec.User,
			Label:      "@" + rec.User,
			Popularity: rec.Followers,
			Summary:    rec.Bio,
		})
		return nil
	})
	if err != nil {
		return nil, apperrors.NewExternal("reading social nodes", err)
	}

	err = readLines(ctx, l.datasets.Social.EdgesPath, func(raw []byte) error {
		var rec socialEdgeRecord
		if err := unmarshal(raw, &rec); err != nil {
			return err
		}
		ds.Edges = append(ds.Edges, graph.EdgeInput{
			Source: rec.User1,
			Target: rec.User2,
			Weight: rec.Weight,
		})
		if len(rec.User1Tweets) > 0 || len(rec.User2Tweets) > 0 {
			ds.Interactions = append(ds.Interactions, Interaction{
				User1:       rec.User1,
				User2:       rec.User2,
				User1Tweets: rec.User1Tweets,
				User2Tweets: rec.User2Tweets,
			})
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewExternal("reading social edges", err)
	}

	l.logger.Info("social dataset read",
		zap.Int("nodes", len(ds.Nodes)),
		zap.Int("edges", len(ds.Edges)),
	)
	return ds, nil
}

// topicNodeRecord is one scraped article row.
type topicNodeRecord struct {
	ID      string `json:"id"`
	Summary string `json:"summary,omitempty"`
	Text    string `json:"text,omitempty"`
}

// topicEdgeRecord is one similarity pair.
type topicEdgeRecord struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
}

func (l *FileLoader) loadTopic(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{
		Category: graph.CategoryTopic,
		Context:  make(map[string][]string),
	}

	err := readLines(ctx, l.datasets.Topic.NodesPath, func(raw []byte) error {
		var rec topicNodeRecord
		if err := unmarshal(raw, &rec); err != nil {
			return err
		}
		ds.Nodes = append(ds.Nodes, graph.NodeInput{
			ID:      rec.ID,
			Label:   rec.ID,
			Summary: rec.Summary,
		})
		if rec.Text != "" {
			ds.Context[rec.ID] = append(ds.Context[rec.ID], rec.Text)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewExternal("reading topic nodes", err)
	}

	degree := make(map[string]float64)
	err = readLines(ctx, l.datasets.Topic.EdgesPath, func(raw []byte) error {
		var rec topicEdgeRecord
		if err := unmarshal(raw, &rec); err != nil {
			return err
		}
		ds.Edges = append(ds.Edges, graph.EdgeInput{
			Source:     rec.Source,
			Target:     rec.Target,
			Similarity: rec.Similarity,
		})
		if rec.Similarity > l.datasets.SimilarityFloor {
			degree[rec.Source]++
			degree[rec.Target]++
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewExternal("reading topic edges", err)
	}

	// topics have no follower counts; connectivity drives sizing
	for i := range ds.Nodes {
		ds.Nodes[i].Popularity = degree[ds.Nodes[i].ID]
	}

	l.logger.Info("topic dataset read",
		zap.Int("nodes", len(ds.Nodes)),
		zap.Int("edges", len(ds.Edges)),
	)
	return ds, nil
}
