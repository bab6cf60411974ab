package testset

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/soumendrak/ragas/pkg/graph"
)

func conceptParams(client *fakeClient) SynthesizerParams {
	return SynthesizerParams{
		Client:   client,
		Rand:     rand.New(rand.NewSource(2)),
		MaxTries: 1,
		Parallel: 2,
	}
}

func TestConceptSynthesizerEndToEnd(t *testing.T) {
	kg := documentGraph(t, 3)
	client := newFakeClient(passingHandler)
	syn := NewConceptSynthesizer(conceptParams(client))

	scenarios, err := syn.GenerateScenarios(context.Background(), 2, kg)
	if err != nil {
		t.Fatalf("GenerateScenarios: %v", err)
	}

	if got := client.callCount("common_concepts"); got != 1 {
		t.Fatalf("expected 1 concept extraction call, got %d", got)
	}
	prompt := client.promptsFor("common_concepts")[0]
	for i := 0; i < 3; i++ {
		if !strings.Contains(prompt, fmt.Sprintf("keyphrase %d", i)) {
			t.Fatalf("extraction prompt missing keyphrase %d:\n%s", i, prompt)
		}
	}

	if len(scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(scenarios))
	}
	if scenarios[0].Family != FamilyConcept {
		t.Fatalf("expected family %q, got %q", FamilyConcept, scenarios[0].Family)
	}

	sample, err := syn.GenerateSample(context.Background(), scenarios[0])
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	if len(sample.ReferenceContexts) != 3 {
		t.Fatalf("expected 3 summary contexts, got %d", len(sample.ReferenceContexts))
	}
	for i, got := range sample.ReferenceContexts {
		want := fmt.Sprintf("document summary %d", i)
		if got != want {
			t.Fatalf("context %d = %q, want %q", i, got, want)
		}
	}

	// The question prompt carries concept, keyphrases, and summaries.
	questionPrompt := client.promptsFor("comparative_question")[0]
	for _, want := range []string{"test concept", "keyphrase 0", "document summary 2"} {
		if !strings.Contains(questionPrompt, want) {
			t.Fatalf("question prompt missing %q:\n%s", want, questionPrompt)
		}
	}
}

func TestConceptSynthesizerFiltersToDocumentNodes(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	doc1 := mustNode(t, graph.NodeTypeDocument, map[string]any{
		graph.PropSummary:    "doc summary 1",
		graph.PropKeyphrases: []string{"alpha"},
	})
	doc2 := mustNode(t, graph.NodeTypeDocument, map[string]any{
		graph.PropSummary:    "doc summary 2",
		graph.PropKeyphrases: []string{"beta"},
	})
	chunk := mustNode(t, graph.NodeTypeChunk, map[string]any{
		graph.PropSummary: "chunk summary",
	})
	kg.AddNode(doc1)
	kg.AddNode(doc2)
	kg.AddNode(chunk)
	mustRelate(t, kg, graph.PropSummaryCosineSimilarity, doc1, doc2, 0.9)
	mustRelate(t, kg, graph.PropSummaryCosineSimilarity, doc2, chunk, 0.9)

	client := newFakeClient(passingHandler)
	syn := NewConceptSynthesizer(conceptParams(client))

	scenarios, err := syn.GenerateScenarios(context.Background(), 2, kg)
	if err != nil {
		t.Fatalf("GenerateScenarios: %v", err)
	}
	for _, scenario := range scenarios {
		for _, node := range scenario.Nodes {
			if node.Type != graph.NodeTypeDocument {
				t.Fatalf("scenario contains a %q node; only documents allowed", node.Type)
			}
		}
	}
}

func TestConceptSynthesizerSingletonFallback(t *testing.T) {
	kg := graph.NewKnowledgeGraph()
	for i := 0; i < 4; i++ {
		kg.AddNode(mustNode(t, graph.NodeTypeDocument, map[string]any{
			graph.PropSummary:    fmt.Sprintf("summary %d", i),
			graph.PropKeyphrases: []string{fmt.Sprintf("phrase %d", i)},
		}))
	}

	client := newFakeClient(passingHandler)
	syn := NewConceptSynthesizer(conceptParams(client))

	scenarios, err := syn.GenerateScenarios(context.Background(), 2, kg)
	if err != nil {
		t.Fatalf("GenerateScenarios: %v", err)
	}
	// Fallback clusters are capped at the target, one concept each.
	if got := client.callCount("common_concepts"); got != 2 {
		t.Fatalf("expected 2 extraction calls, got %d", got)
	}
	if len(scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(scenarios))
	}
}

func TestConceptSampleRequiresSummaries(t *testing.T) {
	node := mustNode(t, graph.NodeTypeDocument, map[string]any{
		graph.PropKeyphrases: []string{"alpha"},
	})

	client := newFakeClient(passingHandler)
	syn := NewConceptSynthesizer(conceptParams(client))

	_, err := syn.GenerateSample(context.Background(), Scenario{
		Family: FamilyConcept,
		Label:  "test concept",
		Nodes:  []*graph.Node{node},
		Style:  QuestionStyleSimple,
		Length: QuestionLengthShort,
	})
	if err == nil {
		t.Fatal("expected an error for a scenario without summaries")
	}
}
