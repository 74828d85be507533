// Package source loads the raw datasets the explorer runs on. Each
// category has its own record shapes, mirrored from the files the data
// pipeline emits (JSON Lines, one record per line).
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"constellation-backend/internal/domain/graph"
)

// Dataset is the raw material for one graph load: node and edge records
// plus the free text the analysis service draws on. Topic text is
// per node (Context); social tweets belong to the interaction that
// carried them (Interactions), so analysis over a set of accounts only
// sees tweets exchanged within that set.
type Dataset struct {
	Category     graph.Category
	Nodes        []graph.NodeInput
	Edges        []graph.EdgeInput
	Context      map[string][]string
	Interactions []Interaction
}

// Interaction is one social edge's analysis context: the tweets each
// side contributed to that specific exchange.
type Interaction struct {
	User1       string
	User2       string
	User1Tweets []string
	User2Tweets []string
}

// Loader fetches a dataset for a category. Implementations must respect
// ctx cancellation: a superseded load's result is discarded by the
// caller, but it should stop reading early when it can.
type Loader interface {
	Load(ctx context.Context, category graph.Category) (*Dataset, error)
}

// readLines streams JSONL records from path into fn, stopping on ctx
// cancellation.
func readLines(ctx context.Context, path string, fn func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		if err := fn(raw); err != nil {
			return fmt.Errorf("%s line %d: %w", path, line, err)
		}
	}
	return scanner.Err()
}

func unmarshal(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}
