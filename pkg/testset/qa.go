package testset

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/soumendrak/ragas/internal/util"
	"github.com/soumendrak/ragas/pkg/ai"
	"github.com/soumendrak/ragas/pkg/graph"
	"github.com/soumendrak/ragas/pkg/logger"
)

// Synthesizer produces scenarios from a knowledge graph and turns each
// scenario into one testset sample.
type Synthesizer interface {
	Name() string
	// GenerateScenarios derives n fully-specified scenarios from the graph.
	// It returns ErrNoClusters when the graph holds no usable content.
	GenerateScenarios(ctx context.Context, n int, kg *graph.KnowledgeGraph) ([]Scenario, error)
	// GenerateSample runs the QA pipeline for one scenario.
	GenerateSample(ctx context.Context, scenario Scenario) (Sample, error)
}

// criticPassThreshold is the minimum combined critic score (out of 4) for a
// question to skip revision.
const criticPassThreshold = 3

// Defaults applied by newQASynthesizer when the corresponding param is unset.
const (
	DefaultMaxTries = 3
	DefaultParallel = 8
)

// SynthesizerParams configures a scenario synthesizer. Zero values select
// sane defaults; Client is required.
type SynthesizerParams struct {
	Client ai.Client
	// Rand is the sampling source for question attributes. Defaults to a
	// time-seeded source; inject a fixed seed for reproducible testsets.
	Rand     *rand.Rand
	MaxTries int
	Parallel int
}

func newQASynthesizer(params SynthesizerParams) qaSynthesizer {
	s := qaSynthesizer{
		client:   params.Client,
		rng:      params.Rand,
		maxTries: params.MaxTries,
		parallel: params.Parallel,
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.maxTries <= 0 {
		s.maxTries = DefaultMaxTries
	}
	if s.parallel <= 0 {
		s.parallel = DefaultParallel
	}
	return s
}

// qaSynthesizer carries the pieces shared by both scenario families: the LLM
// client, the attribute sampling source, and retry/concurrency settings.
type qaSynthesizer struct {
	client   ai.Client
	rng      *rand.Rand
	maxTries int
	parallel int
}

// criticQuestion scores the question on independence and clear intent and
// reports whether it passes.
func (s *qaSynthesizer) criticQuestion(ctx context.Context, question string) (bool, error) {
	verdict, err := util.RetryWithContext(ctx, s.maxTries, func(ctx context.Context) (criticResponse, error) {
		var out criticResponse
		err := s.client.GenerateCompletionWithFormat(ctx,
			"question_critic",
			"Quality scores for a generated question",
			fmt.Sprintf(criticPrompt, question),
			&out,
		)
		return out, err
	})
	if err != nil {
		return false, fmt.Errorf("criticizing question: %w", err)
	}
	return verdict.Independence+verdict.ClearIntent >= criticPassThreshold, nil
}

// modifyQuestion rewrites a question that failed the critic, keeping it on
// topic and re-applying the sampled style and length.
func (s *qaSynthesizer) modifyQuestion(
	ctx context.Context,
	question string,
	topic string,
	style QuestionStyle,
	length QuestionLength,
) (string, error) {
	revised, err := util.RetryWithContext(ctx, s.maxTries, func(ctx context.Context) (questionResponse, error) {
		var out questionResponse
		err := s.client.GenerateCompletionWithFormat(ctx,
			"modified_question",
			"A self-contained rewrite of the question",
			fmt.Sprintf(modifyQuestionPrompt, question, topic, style, length),
			&out,
		)
		return out, err
	})
	if err != nil {
		return "", fmt.Errorf("modifying question: %w", err)
	}
	if revised.Question == "" {
		return "", fmt.Errorf("modifying question: model returned an empty rewrite")
	}
	return revised.Question, nil
}

// generateAnswer produces the reference answer for the question from the
// assembled source text.
func (s *qaSynthesizer) generateAnswer(ctx context.Context, question, sourceText string) (string, error) {
	answer, err := util.RetryWithContext(ctx, s.maxTries, func(ctx context.Context) (answerResponse, error) {
		var out answerResponse
		err := s.client.GenerateCompletionWithFormat(ctx,
			"reference_answer",
			"The reference answer grounded in the provided context",
			fmt.Sprintf(answerPrompt, question, sourceText),
			&out,
		)
		return out, err
	})
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	if answer.Answer == "" {
		return "", fmt.Errorf("generating answer: model returned an empty answer")
	}
	return answer.Answer, nil
}

// finalizeSample runs the tail of the QA pipeline shared by both families:
// critic the draft question, revise it at most once on failure, then generate
// the reference answer from the source text. The revised question is accepted
// without a second critic round.
func (s *qaSynthesizer) finalizeSample(
	ctx context.Context,
	scenario Scenario,
	question string,
	sourceText string,
	contexts []string,
) (Sample, error) {
	passed, err := s.criticQuestion(ctx, question)
	if err != nil {
		return Sample{}, err
	}
	if !passed {
		logger.Debug("[Testset] Question failed critic, revising",
			"family", scenario.Family, "label", scenario.Label)
		question, err = s.modifyQuestion(ctx, question, scenario.Label, scenario.Style, scenario.Length)
		if err != nil {
			return Sample{}, err
		}
	}

	answer, err := s.generateAnswer(ctx, question, sourceText)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		UserInput:         question,
		Reference:         answer,
		ReferenceContexts: contexts,
	}, nil
}
