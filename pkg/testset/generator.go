package testset

import (
	"context"
	"errors"
	"fmt"

	"github.com/soumendrak/ragas/pkg/executor"
	"github.com/soumendrak/ragas/pkg/graph"
	"github.com/soumendrak/ragas/pkg/logger"
)

// maxRounds bounds how often the generator re-derives scenarios to make up
// for failed samples before giving up on the remaining quota.
const maxRounds = 3

// Failure records one scenario whose QA pipeline failed. Failures are
// reported alongside the samples so a partially failed run is still usable.
type Failure struct {
	Synthesizer string `json:"synthesizer"`
	Label       string `json:"label"`
	Error       string `json:"error"`
}

// Testset is the result of one generation run.
type Testset struct {
	Samples  []Sample  `json:"samples"`
	Failures []Failure `json:"failures,omitempty"`
}

// GeneratorParams configures a Generator. Client is required; the remaining
// fields default like SynthesizerParams.
type GeneratorParams = SynthesizerParams

// Generator drives both scenario families against a knowledge graph and
// collects the resulting samples into a testset. The target size is split
// evenly across the families, with the remainder going to the theme family.
type Generator struct {
	synthesizers []Synthesizer
	parallel     int
}

func NewGenerator(params GeneratorParams) *Generator {
	parallel := params.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	return &Generator{
		synthesizers: []Synthesizer{
			NewThemeSynthesizer(params),
			NewConceptSynthesizer(params),
		},
		parallel: parallel,
	}
}

// Generate produces up to n samples from the graph. Per-scenario failures are
// recorded in the testset rather than aborting the run; Generate returns an
// error only when no family can derive scenarios at all or the context is
// canceled.
func (g *Generator) Generate(ctx context.Context, n int, kg *graph.KnowledgeGraph) (*Testset, error) {
	if n <= 0 {
		return nil, fmt.Errorf("testset size must be positive, got %d", n)
	}

	quotas := splitQuota(n, len(g.synthesizers))
	testset := &Testset{}
	noClusters := 0

	for i, syn := range g.synthesizers {
		samples, failures, err := g.runSynthesizer(ctx, syn, quotas[i], kg)
		if err != nil {
			if errors.Is(err, ErrNoClusters) {
				logger.Warn("[Testset] No clusters for family, skipping",
					"synthesizer", syn.Name())
				noClusters++
				// Hand the unmet quota to the next family.
				if i+1 < len(quotas) {
					quotas[i+1] += quotas[i]
				}
				continue
			}
			return nil, err
		}
		testset.Samples = append(testset.Samples, samples...)
		testset.Failures = append(testset.Failures, failures...)
	}

	if noClusters == len(g.synthesizers) {
		return nil, ErrNoClusters
	}

	if len(testset.Samples) > n {
		testset.Samples = testset.Samples[:n]
	}
	logger.Info("[Testset] Generation complete",
		"requested", n, "samples", len(testset.Samples), "failures", len(testset.Failures))
	return testset, nil
}

// runSynthesizer collects up to quota samples from one family, re-deriving
// scenarios for the shortfall for up to maxRounds rounds. A round that adds
// no samples ends the loop early; the graph will not yield more.
func (g *Generator) runSynthesizer(
	ctx context.Context,
	syn Synthesizer,
	quota int,
	kg *graph.KnowledgeGraph,
) ([]Sample, []Failure, error) {
	var samples []Sample
	var failures []Failure

	for round := 0; round < maxRounds && len(samples) < quota; round++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		need := quota - len(samples)

		scenarios, err := syn.GenerateScenarios(ctx, need, kg)
		if err != nil {
			if round == 0 {
				return nil, nil, err
			}
			logger.Warn("[Testset] Scenario derivation failed mid-run",
				"synthesizer", syn.Name(), "round", round, "err", err)
			break
		}

		results := executor.RunBatch(ctx, fmt.Sprintf("Generating samples (%s)", syn.Name()), g.parallel,
			func(ctx context.Context, scenario Scenario) (Sample, error) {
				return syn.GenerateSample(ctx, scenario)
			},
			scenarios,
		)

		added := 0
		for i, res := range results {
			if res.Err != nil {
				failures = append(failures, Failure{
					Synthesizer: syn.Name(),
					Label:       scenarios[i].Label,
					Error:       res.Err.Error(),
				})
				continue
			}
			samples = append(samples, res.Value)
			added++
		}
		if added == 0 {
			break
		}
	}

	if len(samples) > quota {
		samples = samples[:quota]
	}
	return samples, failures, nil
}

// splitQuota divides n across parts as evenly as possible, giving the
// remainder to the earliest parts.
func splitQuota(n, parts int) []int {
	quotas := make([]int, parts)
	for i := range quotas {
		quotas[i] = n / parts
	}
	for i := 0; i < n%parts; i++ {
		quotas[i]++
	}
	return quotas
}
