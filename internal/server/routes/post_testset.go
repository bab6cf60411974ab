package routes

import (
	"errors"
	"math/rand"
	"net/http"

	"github.com/soumendrak/ragas/internal/server/middleware"
	"github.com/soumendrak/ragas/pkg/ai"
	"github.com/soumendrak/ragas/pkg/graph"
	"github.com/soumendrak/ragas/pkg/logger"
	"github.com/soumendrak/ragas/pkg/testset"

	"github.com/labstack/echo/v4"
)

// GenerateTestsetHandler synthesizes a testset from a posted knowledge graph.
func GenerateTestsetHandler(c echo.Context) error {
	type generateTestsetBody struct {
		Graph *graph.KnowledgeGraph `json:"graph"`
		Size  int                   `json:"size"`
		// Seed makes attribute sampling reproducible when set.
		Seed *int64 `json:"seed,omitempty"`
	}

	type generateTestsetResponse struct {
		Message  string             `json:"message"`
		Samples  []testset.Sample   `json:"samples,omitempty"`
		Failures []testset.Failure  `json:"failures,omitempty"`
		Metrics  *ai.ModelMetrics   `json:"metrics,omitempty"`
	}

	data := new(generateTestsetBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, generateTestsetResponse{
			Message: "Invalid request body",
		})
	}
	if data.Graph == nil || len(data.Graph.Nodes) == 0 {
		return c.JSON(http.StatusBadRequest, generateTestsetResponse{
			Message: "Request must include a non-empty graph",
		})
	}
	if data.Size <= 0 {
		return c.JSON(http.StatusBadRequest, generateTestsetResponse{
			Message: "Testset size must be positive",
		})
	}

	app := c.(*middleware.AppContext).App
	app.AiClient.ResetMetrics()

	var rng *rand.Rand
	if data.Seed != nil {
		rng = rand.New(rand.NewSource(*data.Seed))
	}

	gen := testset.NewGenerator(testset.GeneratorParams{
		Client:   app.AiClient,
		Rand:     rng,
		MaxTries: app.MaxTries,
		Parallel: app.Parallel,
	})

	ctx := c.Request().Context()
	result, err := gen.Generate(ctx, data.Size, data.Graph)
	if err != nil {
		if errors.Is(err, testset.ErrNoClusters) {
			return c.JSON(http.StatusUnprocessableEntity, generateTestsetResponse{
				Message: "Graph has no usable clusters; enrich it first",
			})
		}
		logger.Error("[Testset] Generation failed", "err", err)
		return c.JSON(http.StatusInternalServerError, generateTestsetResponse{
			Message: "Internal server error",
		})
	}

	metrics := app.AiClient.GetMetrics()
	return c.JSON(http.StatusOK, generateTestsetResponse{
		Message:  "Testset generated successfully",
		Samples:  result.Samples,
		Failures: result.Failures,
		Metrics:  &metrics,
	})
}
