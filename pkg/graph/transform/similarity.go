package transform

import (
	"context"
	"fmt"
	"math"

	"github.com/soumendrak/ragas/pkg/ai"
	"github.com/soumendrak/ragas/pkg/executor"
	"github.com/soumendrak/ragas/pkg/graph"

	"gonum.org/v1/gonum/floats"
)

// SimilarityBuilder embeds a textual property of every node of the configured
// type and connects each pair whose cosine similarity clears the threshold
// with a scored relationship.
//
// Property selects the text to embed (page_content or summary), RelationType
// is both the relationship type and the name of the score property read by
// the scenario predicates (cosine_similarity / summary_cosine_similarity).
type SimilarityBuilder struct {
	Client       ai.Client
	NodeType     graph.NodeType
	Property     string
	RelationType string
	Threshold    float64
	Parallel     int
}

func (b *SimilarityBuilder) Name() string {
	return fmt.Sprintf("similarity_builder(%s/%s)", b.NodeType, b.Property)
}

func (b *SimilarityBuilder) Apply(ctx context.Context, kg *graph.KnowledgeGraph) error {
	threshold := b.Threshold
	if threshold <= 0 {
		threshold = 0.75
	}

	var targets []*graph.Node
	for _, node := range kg.NodesOfType(b.NodeType) {
		if _, ok := node.GetStringProperty(b.Property); ok {
			targets = append(targets, node)
		}
	}
	if len(targets) < 2 {
		return nil
	}

	limit := b.Parallel
	if limit <= 0 {
		limit = DefaultParallelRequests
	}

	results := executor.RunBatch(ctx, "Embedding node content", limit,
		func(ctx context.Context, node *graph.Node) ([]float64, error) {
			text, _ := node.GetStringProperty(b.Property)
			vec, err := b.Client.GenerateEmbedding(ctx, []byte(text))
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(vec))
			for i, v := range vec {
				out[i] = float64(v)
			}
			return out, nil
		},
		targets,
	)

	// An embedding failure makes every pair involving that node undecidable,
	// so it fails the whole transform rather than silently dropping edges.
	embeddings := make([][]float64, len(targets))
	for i, res := range results {
		if res.Err != nil {
			return fmt.Errorf("embedding node %s: %w", targets[i].ID, res.Err)
		}
		embeddings[i] = res.Value
	}

	for i := 0; i < len(targets); i++ {
		for j := i + 1; j < len(targets); j++ {
			score, ok := cosineSimilarity(embeddings[i], embeddings[j])
			if !ok || score < threshold {
				continue
			}
			_, err := kg.AddRelationship(b.RelationType, targets[i], targets[j], map[string]any{
				b.RelationType: score,
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func cosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return floats.Dot(a, b) / (normA * normB), true
}
