package testset

import (
	"math/rand"

	"github.com/soumendrak/ragas/pkg/graph"
)

// QuestionStyle controls the phrasing register of a synthesized question.
type QuestionStyle string

const (
	QuestionStyleSimple       QuestionStyle = "SIMPLE"
	QuestionStyleReasoning    QuestionStyle = "REASONING"
	QuestionStyleMultiContext QuestionStyle = "MULTI_CONTEXT"
)

// QuestionLength controls how long a synthesized question should be.
type QuestionLength string

const (
	QuestionLengthShort  QuestionLength = "SHORT"
	QuestionLengthMedium QuestionLength = "MEDIUM"
	QuestionLengthLong   QuestionLength = "LONG"
)

// AllQuestionStyles returns the enumerated style choice set.
func AllQuestionStyles() []QuestionStyle {
	return []QuestionStyle{
		QuestionStyleSimple,
		QuestionStyleReasoning,
		QuestionStyleMultiContext,
	}
}

// AllQuestionLengths returns the enumerated length choice set.
func AllQuestionLengths() []QuestionLength {
	return []QuestionLength{
		QuestionLengthShort,
		QuestionLengthMedium,
		QuestionLengthLong,
	}
}

// ScenarioFamily tags which scenario variant a Scenario belongs to. The QA
// pipeline dispatches on the tag for family-specific source-text assembly.
type ScenarioFamily string

const (
	// FamilyTheme anchors questions to a theme abstracted from chunk summaries.
	FamilyTheme ScenarioFamily = "theme"
	// FamilyConcept anchors questions to a concept shared across document keyphrases.
	FamilyConcept ScenarioFamily = "concept"
)

// Scenario is the fully-specified input to one QA pipeline run: an anchor
// label, the cluster of nodes it was derived from, and sampled question
// attributes. Scenarios are immutable once built and consumed exactly once.
type Scenario struct {
	Family ScenarioFamily
	Label  string
	Nodes  []*graph.Node
	Style  QuestionStyle
	Length QuestionLength
}

// clusterLabel pairs one extracted label with the cluster it came from.
type clusterLabel struct {
	nodes []*graph.Node
	label string
}

// sampleChoices draws count values independently and uniformly at random
// with replacement from choices.
func sampleChoices[T any](rng *rand.Rand, choices []T, count int) []T {
	out := make([]T, count)
	for i := range out {
		out[i] = choices[rng.Intn(len(choices))]
	}
	return out
}

// numPerCluster computes how many labels to request from each cluster so
// that numClusters clusters can cover a target of n scenarios:
// ceil(n / numClusters).
func numPerCluster(n, numClusters int) int {
	return (n + numClusters - 1) / numClusters
}

// assembleScenarios zips flattened (cluster, label) pairs with sampled style
// and length sequences positionally. The three sequences must be equal
// length; the caller upholds that by sampling after flattening. Repeated
// (cluster, label) pairs are legal and kept as-is.
func assembleScenarios(
	family ScenarioFamily,
	pairs []clusterLabel,
	styles []QuestionStyle,
	lengths []QuestionLength,
) ([]Scenario, error) {
	if len(pairs) != len(styles) || len(pairs) != len(lengths) {
		return nil, &LengthMismatchError{
			Pairs:   len(pairs),
			Styles:  len(styles),
			Lengths: len(lengths),
		}
	}

	scenarios := make([]Scenario, 0, len(pairs))
	for i, pair := range pairs {
		scenarios = append(scenarios, Scenario{
			Family: family,
			Label:  pair.label,
			Nodes:  pair.nodes,
			Style:  styles[i],
			Length: lengths[i],
		})
	}
	return scenarios, nil
}
