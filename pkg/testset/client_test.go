package testset

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/soumendrak/ragas/pkg/ai"
	"github.com/soumendrak/ragas/pkg/graph"
)

// fakeClient dispatches structured generation calls on the format name and
// counts invocations per name.
type fakeClient struct {
	mu      sync.Mutex
	calls   map[string]int
	prompts map[string][]string
	handler func(name, prompt string, out any) error
}

func newFakeClient(handler func(name, prompt string, out any) error) *fakeClient {
	return &fakeClient{
		calls:   map[string]int{},
		prompts: map[string][]string{},
		handler: handler,
	}
}

func (f *fakeClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", fmt.Errorf("unexpected plain completion call")
}

func (f *fakeClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	f.mu.Lock()
	f.calls[name]++
	f.prompts[name] = append(f.prompts[name], prompt)
	f.mu.Unlock()
	return f.handler(name, prompt, out)
}

func (f *fakeClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, fmt.Errorf("unexpected embedding call")
}

func (f *fakeClient) ResetMetrics()               {}
func (f *fakeClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func (f *fakeClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) promptsFor(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts[name]...)
}

// passingHandler answers every pipeline stage with a fixed, passing response.
func passingHandler(name, prompt string, out any) error {
	switch v := out.(type) {
	case *themesResponse:
		v.Themes = []string{"test theme"}
	case *conceptsResponse:
		v.Concepts = []string{"test concept"}
	case *questionResponse:
		v.Question = "What does the corpus say about the topic?"
	case *criticResponse:
		v.Independence = 2
		v.ClearIntent = 2
	case *answerResponse:
		v.Answer = "The corpus explains the topic in detail."
	default:
		return fmt.Errorf("unexpected output type %T for format %q", out, name)
	}
	return nil
}

func mustNode(t *testing.T, nodeType graph.NodeType, properties map[string]any) *graph.Node {
	t.Helper()
	node, err := graph.NewNode(nodeType, properties)
	if err != nil {
		t.Fatalf("creating node: %v", err)
	}
	return node
}

func mustRelate(t *testing.T, kg *graph.KnowledgeGraph, relType string, source, target *graph.Node, score float64) {
	t.Helper()
	_, err := kg.AddRelationship(relType, source, target, map[string]any{relType: score})
	if err != nil {
		t.Fatalf("creating relationship: %v", err)
	}
}

// chunkGraph builds a graph of linked chunk nodes with summaries and page
// content, connected pairwise by cosine-similarity relationships.
func chunkGraph(t *testing.T, count int) *graph.KnowledgeGraph {
	t.Helper()
	kg := graph.NewKnowledgeGraph()
	var nodes []*graph.Node
	for i := 0; i < count; i++ {
		node := mustNode(t, graph.NodeTypeChunk, map[string]any{
			graph.PropPageContent: fmt.Sprintf("chunk content %d", i),
			graph.PropSummary:     fmt.Sprintf("chunk summary %d", i),
		})
		kg.AddNode(node)
		nodes = append(nodes, node)
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			mustRelate(t, kg, graph.PropCosineSimilarity, nodes[i], nodes[j], 0.9)
		}
	}
	return kg
}

// documentGraph builds a graph of linked document nodes with summaries and
// keyphrases, connected pairwise by summary-similarity relationships.
func documentGraph(t *testing.T, count int) *graph.KnowledgeGraph {
	t.Helper()
	kg := graph.NewKnowledgeGraph()
	var nodes []*graph.Node
	for i := 0; i < count; i++ {
		node := mustNode(t, graph.NodeTypeDocument, map[string]any{
			graph.PropSummary:    fmt.Sprintf("document summary %d", i),
			graph.PropKeyphrases: []string{fmt.Sprintf("keyphrase %d", i)},
		})
		kg.AddNode(node)
		nodes = append(nodes, node)
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			mustRelate(t, kg, graph.PropSummaryCosineSimilarity, nodes[i], nodes[j], 0.9)
		}
	}
	return kg
}
