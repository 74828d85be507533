package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from its layers, lowest priority first:
// built-in defaults, the YAML file at CONFIG_FILE (default
// config/config.yaml, missing file is fine), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config/config.yaml"
	}
	if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	return nil
}

// applyEnv overlays environment variables, the highest-priority layer.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = Environment(v)
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("SOCIAL_NODES_PATH"); v != "" {
		cfg.Datasets.Social.NodesPath = v
	}
	if v := os.Getenv("SOCIAL_EDGES_PATH"); v != "" {
		cfg.Datasets.Social.EdgesPath = v
	}
	if v := os.Getenv("TOPIC_NODES_PATH"); v != "" {
		cfg.Datasets.Topic.NodesPath = v
	}
	if v := os.Getenv("TOPIC_EDGES_PATH"); v != "" {
		cfg.Datasets.Topic.EdgesPath = v
	}
	if v, ok := envFloat("SIMILARITY_FLOOR"); ok {
		cfg.Datasets.SimilarityFloor = v
	}
	if v, ok := envInt("PUZZLE_GUESS_BUDGET"); ok {
		cfg.Puzzle.GuessBudget = v
	}
	if v, ok := envInt("PUZZLE_CANDIDATE_LIMIT"); ok {
		cfg.Puzzle.CandidateLimit = v
	}
	if v := os.Getenv("PUZZLE_QUESTIONS_PATH"); v != "" {
		cfg.Puzzle.QuestionsPath = v
	}
	if v := os.Getenv("ANALYSIS_MODEL"); v != "" {
		cfg.Analysis.Model = v
	}
	if v := os.Getenv("ANALYSIS_BASE_URL"); v != "" {
		cfg.Analysis.BaseURL = v
	}
	if v := os.Getenv("ANALYSIS_ENABLED"); v != "" {
		cfg.Analysis.Enabled = v == "true"
	}
	if v, ok := envDuration("ANALYSIS_TIMEOUT"); ok {
		cfg.Analysis.Timeout = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Sizing.Max <= c.Sizing.Min {
		return fmt.Errorf("sizing.max (%v) must exceed sizing.min (%v)", c.Sizing.Max, c.Sizing.Min)
	}
	if c.Puzzle.GuessBudget <= 0 {
		return fmt.Errorf("puzzle.guess_budget must be positive")
	}
	if c.Puzzle.CandidateLimit <= 0 {
		return fmt.Errorf("puzzle.candidate_limit must be positive")
	}
	return nil
}
