// Package config provides configuration management for the explorer
// backend: typed defaults, a YAML file layer, and environment-variable
// overrides, with optional hot reload of tuning knobs in development.
package config

import "time"

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the full application configuration.
type Config struct {
	Environment Environment `yaml:"environment"`
	Server      Server      `yaml:"server"`
	Datasets    Datasets    `yaml:"datasets"`
	Sizing      Sizing      `yaml:"sizing"`
	Puzzle      Puzzle      `yaml:"puzzle"`
	Analysis    Analysis    `yaml:"analysis"`
	Layout      Layout      `yaml:"layout"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// Dataset describes one loadable dataset category.
type Dataset struct {
	NodesPath string `yaml:"nodes_path"`
	EdgesPath string `yaml:"edges_path"`
}

// Datasets holds the per-category dataset locations and cleaning knobs.
type Datasets struct {
	Social Dataset `yaml:"social"`
	Topic  Dataset `yaml:"topic"`
	// SimilarityFloor drops topic edges below this similarity score.
	SimilarityFloor float64 `yaml:"similarity_floor"`
	// DropIslands removes topic nodes left with no edges after cleaning.
	DropIslands bool `yaml:"drop_islands"`
}

// Sizing holds the node-size normalization bounds.
type Sizing struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Epsilon float64 `yaml:"epsilon"`
}

// Puzzle holds game-mode tuning.
type Puzzle struct {
	GuessBudget    int    `yaml:"guess_budget"`
	CandidateLimit int    `yaml:"candidate_limit"`
	CuratedRounds  []int  `yaml:"curated_rounds"`
	QuestionsPath  string `yaml:"questions_path"`
}

// Analysis holds the external analysis-service settings.
type Analysis struct {
	Enabled bool          `yaml:"enabled"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// Breaker settings follow gobreaker semantics.
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures"`
	BreakerOpenFor     time.Duration `yaml:"breaker_open_for"`
	// MaxTextChars truncates per-topic article text sent for analysis.
	MaxTextChars int `yaml:"max_text_chars"`
}

// Layout holds the opaque knobs passed through to the external layout
// function. The core never interprets them.
type Layout struct {
	Iterations     int     `yaml:"iterations"`
	Gravity        float64 `yaml:"gravity"`
	ScalingRatio   float64 `yaml:"scaling_ratio"`
	PreventOverlap bool    `yaml:"prevent_overlap"`
}

// Default returns the built-in configuration, the lowest layer of the
// load hierarchy.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:5173"},
		},
		Datasets: Datasets{
			Social: Dataset{
				NodesPath: "data/social_nodes.jsonl",
				EdgesPath: "data/social_edges.jsonl",
			},
			Topic: Dataset{
				NodesPath: "data/topic_nodes.jsonl",
				EdgesPath: "data/topic_edges.jsonl",
			},
			SimilarityFloor: 0.42,
			DropIslands:     true,
		},
		Sizing: Sizing{Min: 3, Max: 16, Epsilon: 1e-9},
		Puzzle: Puzzle{
			GuessBudget:    5,
			CandidateLimit: 50,
			CuratedRounds:  []int{1, 3, 5},
		},
		Analysis: Analysis{
			Enabled:            true,
			Model:              "gpt-4o-mini",
			Timeout:            30 * time.Second,
			BreakerMaxFailures: 3,
			BreakerOpenFor:     time.Minute,
			MaxTextChars:       1000,
		},
		Layout: Layout{
			Iterations:     100,
			Gravity:        1,
			ScalingRatio:   2,
			PreventOverlap: true,
		},
	}
}
