package transform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/soumendrak/ragas/pkg/ai"
	"github.com/soumendrak/ragas/pkg/graph"
)

// fakeClient serves structured generation and embeddings from canned
// handlers, counting calls per format name.
type fakeClient struct {
	mu         sync.Mutex
	calls      map[string]int
	onFormat   func(name, prompt string, out any) error
	embeddings map[string][]float32
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls:      map[string]int{},
		embeddings: map[string][]float32{},
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
	f.mu.Unlock()
	if f.onFormat == nil {
		return fmt.Errorf("no format handler configured")
	}
	return f.onFormat(name, prompt, out)
}

func (f *fakeClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["embedding"]++
	vec, ok := f.embeddings[string(input)]
	if !ok {
		return nil, fmt.Errorf("no embedding for %q", string(input))
	}
	return vec, nil
}

func (f *fakeClient) ResetMetrics()               {}
func (f *fakeClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func (f *fakeClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func chunkNode(t *testing.T, content string) *graph.Node {
	t.Helper()
	node, err := graph.NewNode(graph.NodeTypeChunk, map[string]any{
		graph.PropPageContent: content,
	})
	if err != nil {
		t.Fatalf("creating node: %v", err)
	}
	return node
}

func TestSummaryExtractorSetsSummaries(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	fresh := chunkNode(t, "fresh content")
	summarized := chunkNode(t, "already summarized")
	summarized.SetProperty(graph.PropSummary, "existing summary")
	empty, err := graph.NewNode(graph.NodeTypeChunk, nil)
	if err != nil {
		t.Fatalf("creating node: %v", err)
	}
	kg.AddNode(fresh)
	kg.AddNode(summarized)
	kg.AddNode(empty)

	client := newFakeClient()
	client.onFormat = func(name, prompt string, out any) error {
		res, ok := out.(*summaryResponse)
		if !ok {
			return fmt.Errorf("unexpected output type %T", out)
		}
		res.Summary = "summary of: " + prompt
		return nil
	}

	extractor := &SummaryExtractor{Client: client, NodeType: graph.NodeTypeChunk}
	if err := extractor.Apply(context.Background(), kg); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Only the node with content and no summary is processed.
	if got := client.callCount("extract_summary"); got != 1 {
		t.Fatalf("expected 1 extraction call, got %d", got)
	}
	if summary, ok := fresh.GetStringProperty(graph.PropSummary); !ok || summary != "summary of: fresh content" {
		t.Fatalf("fresh node summary = %q, %v", summary, ok)
	}
	if summary, _ := summarized.GetStringProperty(graph.PropSummary); summary != "existing summary" {
		t.Fatalf("existing summary overwritten: %q", summary)
	}
	if _, ok := empty.GetStringProperty(graph.PropSummary); ok {
		t.Fatal("node without content gained a summary")
	}
}

func TestSummaryExtractorIsolatesFailures(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	good := chunkNode(t, "good content")
	bad := chunkNode(t, "bad content")
	kg.AddNode(good)
	kg.AddNode(bad)

	client := newFakeClient()
	client.onFormat = func(name, prompt string, out any) error {
		if strings.Contains(prompt, "bad") {
			return fmt.Errorf("model unavailable")
		}
		out.(*summaryResponse).Summary = "ok"
		return nil
	}

	extractor := &SummaryExtractor{Client: client, NodeType: graph.NodeTypeChunk}
	if err := extractor.Apply(context.Background(), kg); err != nil {
		t.Fatalf("a per-node failure must not fail the transform: %v", err)
	}
	if _, ok := good.GetStringProperty(graph.PropSummary); !ok {
		t.Fatal("surviving node should have a summary")
	}
	if _, ok := bad.GetStringProperty(graph.PropSummary); ok {
		t.Fatal("failed node should be left without a summary")
	}
}

func TestKeyphrasesExtractorCapsPhrases(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	node := chunkNode(t, "some content")
	kg.AddNode(node)

	client := newFakeClient()
	client.onFormat = func(name, prompt string, out any) error {
		res, ok := out.(*keyphrasesResponse)
		if !ok {
			return fmt.Errorf("unexpected output type %T", out)
		}
		res.Keyphrases = []string{"one", "two", "three", "four"}
		return nil
	}

	extractor := &KeyphrasesExtractor{Client: client, NodeType: graph.NodeTypeChunk, MaxKeyphrases: 2}
	if err := extractor.Apply(context.Background(), kg); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	phrases, ok := node.GetStringSliceProperty(graph.PropKeyphrases)
	if !ok || len(phrases) != 2 {
		t.Fatalf("expected 2 keyphrases, got %v", phrases)
	}
}

func TestApplyRunsTransformsInOrder(t *testing.T) {
	var order []string
	kg := graph.NewKnowledgeGraph()

	first := &funcTransform{name: "first", fn: func() error {
		order = append(order, "first")
		return nil
	}}
	second := &funcTransform{name: "second", fn: func() error {
		order = append(order, "second")
		return nil
	}}

	if err := Apply(context.Background(), kg, first, second); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("transforms ran out of order: %v", order)
	}
}

func TestApplyStopsOnFailure(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	boom := fmt.Errorf("boom")
	ran := false

	failing := &funcTransform{name: "failing", fn: func() error { return boom }}
	after := &funcTransform{name: "after", fn: func() error {
		ran = true
		return nil
	}}

	err := Apply(context.Background(), kg, failing, after)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected the transform error, got %v", err)
	}
	if ran {
		t.Fatal("later transform ran after a failure")
	}
}

type funcTransform struct {
	name string
	fn   func() error
}

func (f *funcTransform) Name() string { return f.name }
func (f *funcTransform) Apply(ctx context.Context, kg *graph.KnowledgeGraph) error {
	return f.fn()
}
