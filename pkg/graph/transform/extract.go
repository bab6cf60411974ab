package transform

import (
	"context"
	"fmt"

	"github.com/soumendrak/ragas/pkg/ai"
	"github.com/soumendrak/ragas/pkg/executor"
	"github.com/soumendrak/ragas/pkg/graph"
)

const summaryPrompt = `
# Task Context
You are summarizing a passage so the summary can stand in for the passage during similarity search and question synthesis.

# Detailed Task Description & Rules
- Capture the main subject matter and the concrete claims of the passage.
- Stay strictly within the information present in the passage.
- Keep the summary to at most five sentences.

# Output Formatting
Return a JSON object:
{
  "summary": "<the summary>"
}
`

const keyphrasesPrompt = `
# Task Context
You are extracting the key phrases that identify what a passage is about.

# Detailed Task Description & Rules
- Extract at most %d keyphrases.
- Each keyphrase is a short noun phrase naming a topic, entity, or idea central to the passage.
- Do not invent phrases that have no support in the passage.

# Output Formatting
Return a JSON object:
{
  "keyphrases": ["<phrase>", ...]
}
`

type summaryResponse struct {
	Summary string `json:"summary" jsonschema_description:"A summary of the passage in at most five sentences"`
}

type keyphrasesResponse struct {
	Keyphrases []string `json:"keyphrases" jsonschema_description:"Key phrases central to the passage"`
}

// SummaryExtractor sets the summary property on every node of the configured
// type that has page content, using one structured generation call per node.
// All calls for a run are dispatched as one concurrent batch; a failed node
// is left without a summary and does not fail the transform.
type SummaryExtractor struct {
	Client   ai.Client
	NodeType graph.NodeType
	Parallel int
}

func (e *SummaryExtractor) Name() string {
	return fmt.Sprintf("summary_extractor(%s)", e.NodeType)
}

func (e *SummaryExtractor) Apply(ctx context.Context, kg *graph.KnowledgeGraph) error {
	var targets []*graph.Node
	for _, node := range kg.NodesOfType(e.NodeType) {
		if _, ok := node.GetStringProperty(graph.PropSummary); ok {
			continue
		}
		if _, ok := node.GetStringProperty(graph.PropPageContent); ok {
			targets = append(targets, node)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	limit := e.Parallel
	if limit <= 0 {
		limit = DefaultParallelRequests
	}

	results := executor.RunBatch(ctx, "Extracting summaries", limit,
		func(ctx context.Context, node *graph.Node) (string, error) {
			content, _ := node.GetStringProperty(graph.PropPageContent)
			var res summaryResponse
			err := e.Client.GenerateCompletionWithFormat(
				ctx,
				"extract_summary",
				"Summarize a passage for similarity search.",
				content,
				&res,
				ai.WithSystemPrompts(summaryPrompt),
			)
			if err != nil {
				return "", err
			}
			return res.Summary, nil
		},
		targets,
	)

	for i, res := range results {
		if !res.Ok() || res.Value == "" {
			continue
		}
		targets[i].SetProperty(graph.PropSummary, res.Value)
	}
	return nil
}

// KeyphrasesExtractor sets the keyphrases property on every node of the
// configured type that has page content. Failures are isolated per node.
type KeyphrasesExtractor struct {
	Client        ai.Client
	NodeType      graph.NodeType
	MaxKeyphrases int
	Parallel      int
}

func (e *KeyphrasesExtractor) Name() string {
	return fmt.Sprintf("keyphrases_extractor(%s)", e.NodeType)
}

func (e *KeyphrasesExtractor) Apply(ctx context.Context, kg *graph.KnowledgeGraph) error {
	var targets []*graph.Node
	for _, node := range kg.NodesOfType(e.NodeType) {
		if _, ok := node.GetStringSliceProperty(graph.PropKeyphrases); ok {
			continue
		}
		if _, ok := node.GetStringProperty(graph.PropPageContent); ok {
			targets = append(targets, node)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	maxKeyphrases := e.MaxKeyphrases
	if maxKeyphrases <= 0 {
		maxKeyphrases = 5
	}
	limit := e.Parallel
	if limit <= 0 {
		limit = DefaultParallelRequests
	}

	systemPrompt := fmt.Sprintf(keyphrasesPrompt, maxKeyphrases)

	results := executor.RunBatch(ctx, "Extracting keyphrases", limit,
		func(ctx context.Context, node *graph.Node) ([]string, error) {
			content, _ := node.GetStringProperty(graph.PropPageContent)
			var res keyphrasesResponse
			err := e.Client.GenerateCompletionWithFormat(
				ctx,
				"extract_keyphrases",
				"Extract keyphrases central to a passage.",
				content,
				&res,
				ai.WithSystemPrompts(systemPrompt),
			)
			if err != nil {
				return nil, err
			}
			return res.Keyphrases, nil
		},
		targets,
	)

	for i, res := range results {
		if !res.Ok() || len(res.Value) == 0 {
			continue
		}
		if len(res.Value) > maxKeyphrases {
			res.Value = res.Value[:maxKeyphrases]
		}
		targets[i].SetProperty(graph.PropKeyphrases, res.Value)
	}
	return nil
}
