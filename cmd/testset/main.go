package main

import (
	"context"
	"encoding/json"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/soumendrak/ragas/internal/server"
	"github.com/soumendrak/ragas/internal/util"
	"github.com/soumendrak/ragas/pkg/graph"
	"github.com/soumendrak/ragas/pkg/graph/transform"
	"github.com/soumendrak/ragas/pkg/logger"
	"github.com/soumendrak/ragas/pkg/logger/console"
	"github.com/soumendrak/ragas/pkg/testset"
)

func main() {
	graphPath := flag.String("graph", "", "path to the knowledge graph JSON file")
	outPath := flag.String("out", "testset.jsonl", "path for the generated JSONL testset")
	size := flag.Int("n", 10, "number of samples to generate")
	enrich := flag.Bool("enrich", false, "run enrichment transforms before generating")
	split := flag.Bool("split", false, "split document nodes into chunks (implies -enrich)")
	seed := flag.Int64("seed", 0, "attribute sampling seed; 0 means time-seeded")
	flag.Parse()

	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if *graphPath == "" {
		logger.Fatal("Missing required -graph flag")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(*graphPath)
	if err != nil {
		logger.Fatal("Failed to read graph file", "path", *graphPath, "err", err)
	}
	kg := graph.NewKnowledgeGraph()
	if err := json.Unmarshal(data, kg); err != nil {
		logger.Fatal("Failed to parse graph file", "path", *graphPath, "err", err)
	}
	logger.Info("Loaded knowledge graph",
		"nodes", len(kg.Nodes), "relationships", len(kg.Relationships))

	aiClient := server.NewAIClientFromEnv()
	parallel := int(util.GetEnvNumeric("AI_PARALLEL_REQ", 8))

	if *enrich || *split {
		var transforms []transform.Transform
		if *split {
			transforms = append(transforms, transform.NewSplitter("", 0))
		}
		transforms = append(transforms,
			&transform.SummaryExtractor{Client: aiClient, NodeType: graph.NodeTypeChunk, Parallel: parallel},
			&transform.SummaryExtractor{Client: aiClient, NodeType: graph.NodeTypeDocument, Parallel: parallel},
			&transform.KeyphrasesExtractor{Client: aiClient, NodeType: graph.NodeTypeDocument, Parallel: parallel},
			&transform.SimilarityBuilder{
				Client:       aiClient,
				NodeType:     graph.NodeTypeChunk,
				Property:     graph.PropPageContent,
				RelationType: graph.PropCosineSimilarity,
				Parallel:     parallel,
			},
			&transform.SimilarityBuilder{
				Client:       aiClient,
				NodeType:     graph.NodeTypeDocument,
				Property:     graph.PropSummary,
				RelationType: graph.PropSummaryCosineSimilarity,
				Parallel:     parallel,
			},
		)
		if err := transform.Apply(ctx, kg, transforms...); err != nil {
			logger.Fatal("Enrichment failed", "err", err)
		}
		logger.Info("Graph enriched",
			"nodes", len(kg.Nodes), "relationships", len(kg.Relationships))
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	gen := testset.NewGenerator(testset.GeneratorParams{
		Client:   aiClient,
		Rand:     rng,
		MaxTries: int(util.GetEnvNumeric("AI_MAX_TRIES", 3)),
		Parallel: parallel,
	})

	result, err := gen.Generate(ctx, *size, kg)
	if err != nil {
		logger.Fatal("Testset generation failed", "err", err)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		logger.Fatal("Failed to create output file", "path", *outPath, "err", err)
	}
	defer out.Close()

	if err := result.WriteJSONL(out); err != nil {
		logger.Fatal("Failed to write testset", "path", *outPath, "err", err)
	}

	metrics := aiClient.GetMetrics()
	logger.Info("Testset written",
		"path", *outPath,
		"samples", len(result.Samples),
		"failures", len(result.Failures),
		"total_tokens", metrics.TotalTokens,
	)
}
