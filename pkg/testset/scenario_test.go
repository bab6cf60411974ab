package testset

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNumPerCluster(t *testing.T) {
	cases := []struct {
		name        string
		n           int
		numClusters int
		want        int
	}{
		{"exact division", 10, 5, 2},
		{"rounds up", 10, 3, 4},
		{"single cluster", 7, 1, 7},
		{"more clusters than target", 2, 5, 1},
		{"one each", 3, 3, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := numPerCluster(tc.n, tc.numClusters)
			if got != tc.want {
				t.Fatalf("numPerCluster(%d, %d) = %d, want %d", tc.n, tc.numClusters, got, tc.want)
			}
		})
	}
}

func TestSampleChoices(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	choices := AllQuestionStyles()

	got := sampleChoices(rng, choices, 100)
	if len(got) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(got))
	}

	valid := map[QuestionStyle]bool{}
	for _, style := range choices {
		valid[style] = true
	}
	for i, style := range got {
		if !valid[style] {
			t.Fatalf("sample %d is %q, not in the choice set", i, style)
		}
	}
}

func TestSampleChoicesDeterministicForFixedSeed(t *testing.T) {
	first := sampleChoices(rand.New(rand.NewSource(7)), AllQuestionLengths(), 20)
	second := sampleChoices(rand.New(rand.NewSource(7)), AllQuestionLengths(), 20)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestAssembleScenarios(t *testing.T) {
	pairs := []clusterLabel{
		{label: "alpha"},
		{label: "beta"},
	}
	styles := []QuestionStyle{QuestionStyleSimple, QuestionStyleReasoning}
	lengths := []QuestionLength{QuestionLengthShort, QuestionLengthLong}

	scenarios, err := assembleScenarios(FamilyTheme, pairs, styles, lengths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(scenarios))
	}
	if scenarios[0].Label != "alpha" || scenarios[0].Style != QuestionStyleSimple || scenarios[0].Length != QuestionLengthShort {
		t.Fatalf("scenario 0 not assembled positionally: %+v", scenarios[0])
	}
	if scenarios[1].Label != "beta" || scenarios[1].Style != QuestionStyleReasoning || scenarios[1].Length != QuestionLengthLong {
		t.Fatalf("scenario 1 not assembled positionally: %+v", scenarios[1])
	}
	if scenarios[0].Family != FamilyTheme {
		t.Fatalf("expected family %q, got %q", FamilyTheme, scenarios[0].Family)
	}
}

func TestAssembleScenariosLengthMismatch(t *testing.T) {
	pairs := []clusterLabel{{label: "alpha"}, {label: "beta"}}
	styles := []QuestionStyle{QuestionStyleSimple}
	lengths := []QuestionLength{QuestionLengthShort, QuestionLengthLong}

	_, err := assembleScenarios(FamilyTheme, pairs, styles, lengths)
	var mismatch *LengthMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected LengthMismatchError, got %v", err)
	}
	if mismatch.Pairs != 2 || mismatch.Styles != 1 || mismatch.Lengths != 2 {
		t.Fatalf("unexpected mismatch counts: %+v", mismatch)
	}
}

func TestAssembleScenariosEmpty(t *testing.T) {
	scenarios, err := assembleScenarios(FamilyConcept, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenarios) != 0 {
		t.Fatalf("expected no scenarios, got %d", len(scenarios))
	}
}
