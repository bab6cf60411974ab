package testset

import (
	"context"
	"fmt"
	"strings"

	"github.com/soumendrak/ragas/pkg/executor"
	"github.com/soumendrak/ragas/pkg/graph"
	"github.com/soumendrak/ragas/pkg/logger"
)

// ThemeSynthesizer builds theme-anchored scenarios from clusters of chunk
// nodes connected by cosine-similarity relationships, then synthesizes one
// abstract question per scenario answerable from the chunks' page content.
type ThemeSynthesizer struct {
	qaSynthesizer
}

func NewThemeSynthesizer(params SynthesizerParams) *ThemeSynthesizer {
	return &ThemeSynthesizer{qaSynthesizer: newQASynthesizer(params)}
}

func (s *ThemeSynthesizer) Name() string {
	return "theme_synthesizer"
}

// GenerateScenarios finds chunk clusters, extracts shared themes per cluster
// concurrently, and assembles up to n scenarios with uniformly sampled
// question attributes.
func (s *ThemeSynthesizer) GenerateScenarios(
	ctx context.Context,
	n int,
	kg *graph.KnowledgeGraph,
) ([]Scenario, error) {
	clusters := clustersOfType(kg, graph.NodeTypeChunk, func(rel *graph.Relationship) bool {
		_, ok := rel.GetFloatProperty(graph.PropCosineSimilarity)
		return ok
	})
	if len(clusters) == 0 {
		clusters = singletonClusters(kg, graph.NodeTypeChunk, n)
	}
	if len(clusters) == 0 {
		return nil, ErrNoClusters
	}

	perCluster := numPerCluster(n, len(clusters))
	logger.Debug("[Testset] Extracting themes",
		"clusters", len(clusters), "per_cluster", perCluster)

	results := executor.RunBatch(ctx, "Extracting common themes", s.parallel,
		func(ctx context.Context, cluster []*graph.Node) ([]string, error) {
			return s.extractThemes(ctx, cluster, perCluster)
		},
		clusters,
	)

	var pairs []clusterLabel
	for i, res := range results {
		if res.Err != nil {
			continue
		}
		for _, theme := range res.Value {
			pairs = append(pairs, clusterLabel{nodes: clusters[i], label: theme})
		}
	}
	if len(pairs) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: theme extraction produced no themes", s.Name())
	}
	if len(pairs) > n {
		pairs = pairs[:n]
	}

	styles := sampleChoices(s.rng, AllQuestionStyles(), len(pairs))
	lengths := sampleChoices(s.rng, AllQuestionLengths(), len(pairs))
	return assembleScenarios(FamilyTheme, pairs, styles, lengths)
}

// extractThemes asks the model for up to count themes shared by the cluster's
// chunk summaries.
func (s *ThemeSynthesizer) extractThemes(
	ctx context.Context,
	cluster []*graph.Node,
	count int,
) ([]string, error) {
	var summaries []string
	for _, node := range cluster {
		if summary, ok := node.GetStringProperty(graph.PropSummary); ok {
			summaries = append(summaries, summary)
		}
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("cluster has no nodes with a %q property", graph.PropSummary)
	}

	var out themesResponse
	err := s.client.GenerateCompletionWithFormat(ctx,
		"common_themes",
		"Abstract themes shared across the summaries",
		fmt.Sprintf(commonThemesPrompt, bulletList(summaries), count),
		&out,
	)
	if err != nil {
		return nil, err
	}
	if len(out.Themes) == 0 {
		return nil, fmt.Errorf("model returned no themes")
	}
	if len(out.Themes) > count {
		out.Themes = out.Themes[:count]
	}
	return out.Themes, nil
}

// GenerateSample drafts a theme question from the scenario's chunk contents,
// runs it through the critic/revise stage, and answers it. Reference contexts
// are the page contents of the scenario nodes; nodes without page content are
// skipped.
func (s *ThemeSynthesizer) GenerateSample(ctx context.Context, scenario Scenario) (Sample, error) {
	contexts := collectContexts(scenario.Nodes, graph.PropPageContent)
	if len(contexts) == 0 {
		return Sample{}, fmt.Errorf("%s: scenario %q has no nodes with page content", s.Name(), scenario.Label)
	}
	sourceText := strings.Join(contexts, "\n\n")

	question, err := s.draftQuestion(ctx, scenario, sourceText)
	if err != nil {
		return Sample{}, err
	}

	return s.finalizeSample(ctx, scenario, question, sourceText, contexts)
}

func (s *ThemeSynthesizer) draftQuestion(
	ctx context.Context,
	scenario Scenario,
	sourceText string,
) (string, error) {
	var out questionResponse
	err := s.client.GenerateCompletionWithFormat(ctx,
		"theme_question",
		"One question about the theme answerable from the context",
		fmt.Sprintf(themeQuestionPrompt, scenario.Label, sourceText, scenario.Style, scenario.Length),
		&out,
	)
	if err != nil {
		return "", fmt.Errorf("drafting question for theme %q: %w", scenario.Label, err)
	}
	if out.Question == "" {
		return "", fmt.Errorf("drafting question for theme %q: model returned an empty question", scenario.Label)
	}
	return out.Question, nil
}

// clustersOfType finds predicate-qualified clusters and keeps only nodes of
// the wanted type within each; clusters left empty by the filter are dropped.
func clustersOfType(
	kg *graph.KnowledgeGraph,
	nodeType graph.NodeType,
	predicate graph.RelationshipPredicate,
) [][]*graph.Node {
	var clusters [][]*graph.Node
	for _, cluster := range kg.FindClusters(predicate) {
		var typed []*graph.Node
		for _, node := range cluster {
			if node.Type == nodeType {
				typed = append(typed, node)
			}
		}
		if len(typed) > 0 {
			clusters = append(clusters, typed)
		}
	}
	return clusters
}

// singletonClusters is the fallback for graphs without qualifying
// relationships: every node of the wanted type becomes its own cluster, capped
// at limit so a large flat graph cannot explode the scenario count.
func singletonClusters(kg *graph.KnowledgeGraph, nodeType graph.NodeType, limit int) [][]*graph.Node {
	nodes := kg.NodesOfType(nodeType)
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}
	clusters := make([][]*graph.Node, 0, len(nodes))
	for _, node := range nodes {
		clusters = append(clusters, []*graph.Node{node})
	}
	return clusters
}

// collectContexts gathers the named string property from each node, skipping
// nodes where it is absent.
func collectContexts(nodes []*graph.Node, property string) []string {
	var contexts []string
	for _, node := range nodes {
		if value, ok := node.GetStringProperty(property); ok {
			contexts = append(contexts, value)
		}
	}
	return contexts
}

func bulletList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}
