package transform

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/soumendrak/ragas/pkg/graph"
)

func TestSimilarityBuilderConnectsSimilarNodes(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	a := chunkNode(t, "alpha content")
	b := chunkNode(t, "alpha content rephrased")
	c := chunkNode(t, "unrelated content")
	kg.AddNode(a)
	kg.AddNode(b)
	kg.AddNode(c)

	client := newFakeClient()
	client.embeddings["alpha content"] = []float32{1, 0, 0}
	client.embeddings["alpha content rephrased"] = []float32{1, 0.1, 0}
	client.embeddings["unrelated content"] = []float32{0, 0, 1}

	builder := &SimilarityBuilder{
		Client:       client,
		NodeType:     graph.NodeTypeChunk,
		Property:     graph.PropPageContent,
		RelationType: graph.PropCosineSimilarity,
		Threshold:    0.8,
	}
	if err := builder.Apply(context.Background(), kg); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(kg.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(kg.Relationships))
	}
	rel := kg.Relationships[0]
	if rel.Type != graph.PropCosineSimilarity {
		t.Fatalf("unexpected relationship type %q", rel.Type)
	}
	if (rel.Source != a || rel.Target != b) && (rel.Source != b || rel.Target != a) {
		t.Fatal("relationship connects the wrong nodes")
	}
	score, ok := rel.GetFloatProperty(graph.PropCosineSimilarity)
	if !ok {
		t.Fatal("relationship missing its score property")
	}
	want := 1 / math.Sqrt(1.01)
	if math.Abs(score-want) > 1e-6 {
		t.Fatalf("score = %v, want %v", score, want)
	}
}

func TestSimilarityBuilderSkipsNodesWithoutProperty(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	kg.AddNode(chunkNode(t, "lonely content"))
	empty, err := graph.NewNode(graph.NodeTypeChunk, nil)
	if err != nil {
		t.Fatalf("creating node: %v", err)
	}
	kg.AddNode(empty)

	client := newFakeClient()
	builder := &SimilarityBuilder{
		Client:       client,
		NodeType:     graph.NodeTypeChunk,
		Property:     graph.PropPageContent,
		RelationType: graph.PropCosineSimilarity,
	}

	// A single embeddable node leaves nothing to compare; no calls are made.
	if err := builder.Apply(context.Background(), kg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := client.callCount("embedding"); got != 0 {
		t.Fatalf("expected no embedding calls, got %d", got)
	}
	if len(kg.Relationships) != 0 {
		t.Fatalf("expected no relationships, got %d", len(kg.Relationships))
	}
}

func TestSimilarityBuilderFailsOnEmbeddingError(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	kg.AddNode(chunkNode(t, "first"))
	kg.AddNode(chunkNode(t, "second"))

	client := newFakeClient()
	client.embeddings["first"] = []float32{1, 0}
	// "second" has no embedding configured, so its call fails.

	builder := &SimilarityBuilder{
		Client:       client,
		NodeType:     graph.NodeTypeChunk,
		Property:     graph.PropPageContent,
		RelationType: graph.PropCosineSimilarity,
	}
	err := builder.Apply(context.Background(), kg)
	if err == nil || !strings.Contains(err.Error(), "embedding node") {
		t.Fatalf("expected an embedding failure, got %v", err)
	}
	if len(kg.Relationships) != 0 {
		t.Fatalf("no relationships should be added on failure, got %d", len(kg.Relationships))
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
		ok   bool
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1, true},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0, true},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1, true},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0, false},
		{"length mismatch", []float64{1, 0}, []float64{1, 0, 0}, 0, false},
		{"empty", nil, nil, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := cosineSimilarity(tc.a, tc.b)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("score = %v, want %v", got, tc.want)
			}
		})
	}
}
