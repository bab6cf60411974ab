package testset

import (
	"context"
	"fmt"
	"strings"

	"github.com/soumendrak/ragas/pkg/executor"
	"github.com/soumendrak/ragas/pkg/graph"
	"github.com/soumendrak/ragas/pkg/logger"
)

// ConceptSynthesizer builds concept-anchored scenarios from clusters of
// document nodes connected by summary-similarity relationships, then
// synthesizes one comparative question per scenario that relates the
// documents through the shared concept.
type ConceptSynthesizer struct {
	qaSynthesizer
}

func NewConceptSynthesizer(params SynthesizerParams) *ConceptSynthesizer {
	return &ConceptSynthesizer{qaSynthesizer: newQASynthesizer(params)}
}

func (s *ConceptSynthesizer) Name() string {
	return "concept_synthesizer"
}

// GenerateScenarios finds document clusters, extracts shared concepts from
// each cluster's keyphrases concurrently, and assembles up to n scenarios
// with uniformly sampled question attributes.
func (s *ConceptSynthesizer) GenerateScenarios(
	ctx context.Context,
	n int,
	kg *graph.KnowledgeGraph,
) ([]Scenario, error) {
	clusters := clustersOfType(kg, graph.NodeTypeDocument, func(rel *graph.Relationship) bool {
		_, ok := rel.GetFloatProperty(graph.PropSummaryCosineSimilarity)
		return ok
	})
	if len(clusters) == 0 {
		clusters = singletonClusters(kg, graph.NodeTypeDocument, n)
	}
	if len(clusters) == 0 {
		return nil, ErrNoClusters
	}

	perCluster := numPerCluster(n, len(clusters))
	logger.Debug("[Testset] Extracting concepts",
		"clusters", len(clusters), "per_cluster", perCluster)

	results := executor.RunBatch(ctx, "Extracting common concepts", s.parallel,
		func(ctx context.Context, cluster []*graph.Node) ([]string, error) {
			return s.extractConcepts(ctx, cluster, perCluster)
		},
		clusters,
	)

	var pairs []clusterLabel
	for i, res := range results {
		if res.Err != nil {
			continue
		}
		for _, concept := range res.Value {
			pairs = append(pairs, clusterLabel{nodes: clusters[i], label: concept})
		}
	}
	if len(pairs) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: concept extraction produced no concepts", s.Name())
	}
	if len(pairs) > n {
		pairs = pairs[:n]
	}

	styles := sampleChoices(s.rng, AllQuestionStyles(), len(pairs))
	lengths := sampleChoices(s.rng, AllQuestionLengths(), len(pairs))
	return assembleScenarios(FamilyConcept, pairs, styles, lengths)
}

// extractConcepts asks the model for up to count concepts shared by the
// keyphrases of the cluster's documents.
func (s *ConceptSynthesizer) extractConcepts(
	ctx context.Context,
	cluster []*graph.Node,
	count int,
) ([]string, error) {
	keyphrases := collectKeyphrases(cluster)
	if len(keyphrases) == 0 {
		return nil, fmt.Errorf("cluster has no nodes with a %q property", graph.PropKeyphrases)
	}

	var out conceptsResponse
	err := s.client.GenerateCompletionWithFormat(ctx,
		"common_concepts",
		"Concepts shared across the keyphrases",
		fmt.Sprintf(commonConceptsPrompt, bulletList(keyphrases), count),
		&out,
	)
	if err != nil {
		return nil, err
	}
	if len(out.Concepts) == 0 {
		return nil, fmt.Errorf("model returned no concepts")
	}
	if len(out.Concepts) > count {
		out.Concepts = out.Concepts[:count]
	}
	return out.Concepts, nil
}

// GenerateSample drafts a comparative question from the documents' summaries
// and keyphrases, runs it through the critic/revise stage, and answers it.
// Reference contexts are the summaries of the scenario nodes; nodes without
// a summary are skipped.
func (s *ConceptSynthesizer) GenerateSample(ctx context.Context, scenario Scenario) (Sample, error) {
	contexts := collectContexts(scenario.Nodes, graph.PropSummary)
	if len(contexts) == 0 {
		return Sample{}, fmt.Errorf("%s: scenario %q has no nodes with a summary", s.Name(), scenario.Label)
	}
	sourceText := strings.Join(contexts, "\n\n")
	keyphrases := collectKeyphrases(scenario.Nodes)

	question, err := s.draftQuestion(ctx, scenario, sourceText, keyphrases)
	if err != nil {
		return Sample{}, err
	}

	return s.finalizeSample(ctx, scenario, question, sourceText, contexts)
}

func (s *ConceptSynthesizer) draftQuestion(
	ctx context.Context,
	scenario Scenario,
	sourceText string,
	keyphrases []string,
) (string, error) {
	var out questionResponse
	err := s.client.GenerateCompletionWithFormat(ctx,
		"comparative_question",
		"One comparative question connecting the documents through the concept",
		fmt.Sprintf(comparativeQuestionPrompt,
			scenario.Label,
			strings.Join(keyphrases, ", "),
			sourceText,
			scenario.Style,
			scenario.Length,
		),
		&out,
	)
	if err != nil {
		return "", fmt.Errorf("drafting question for concept %q: %w", scenario.Label, err)
	}
	if out.Question == "" {
		return "", fmt.Errorf("drafting question for concept %q: model returned an empty question", scenario.Label)
	}
	return out.Question, nil
}

// collectKeyphrases flattens the keyphrase lists of all nodes, preserving
// node order and skipping nodes without keyphrases.
func collectKeyphrases(nodes []*graph.Node) []string {
	var keyphrases []string
	for _, node := range nodes {
		if phrases, ok := node.GetStringSliceProperty(graph.PropKeyphrases); ok {
			keyphrases = append(keyphrases, phrases...)
		}
	}
	return keyphrases
}
