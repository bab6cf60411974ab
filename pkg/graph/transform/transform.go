package transform

import (
	"context"
	"fmt"

	"github.com/soumendrak/ragas/pkg/graph"
	"github.com/soumendrak/ragas/pkg/logger"
)

// Transform enriches a knowledge graph in place: adding nodes, setting node
// properties, or adding relationships. Transforms run before testset
// generation; generation itself never mutates the graph.
type Transform interface {
	Name() string
	Apply(ctx context.Context, kg *graph.KnowledgeGraph) error
}

// Apply runs the given transforms in order, stopping at the first failure.
func Apply(ctx context.Context, kg *graph.KnowledgeGraph, transforms ...Transform) error {
	for _, t := range transforms {
		logger.Info("[Transform] Applying", "transform", t.Name(), "nodes", len(kg.Nodes))
		if err := t.Apply(ctx, kg); err != nil {
			return fmt.Errorf("transform %s failed: %w", t.Name(), err)
		}
	}
	return nil
}

// DefaultParallelRequests bounds concurrent generation calls issued by a
// single transform when the caller does not configure a limit.
const DefaultParallelRequests = 8
