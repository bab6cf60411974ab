package routes

import (
	"net/http"

	"github.com/soumendrak/ragas/internal/server/middleware"
	"github.com/soumendrak/ragas/pkg/graph"
	"github.com/soumendrak/ragas/pkg/graph/transform"
	"github.com/soumendrak/ragas/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EnrichGraphHandler runs the enrichment transforms over a posted graph and
// returns the enriched graph: splitting documents into chunks, extracting
// summaries and keyphrases, and building similarity relationships.
func EnrichGraphHandler(c echo.Context) error {
	type enrichGraphBody struct {
		Graph *graph.KnowledgeGraph `json:"graph"`
		// Split controls whether document nodes are split into chunks first.
		Split     bool    `json:"split"`
		MaxTokens int     `json:"max_tokens,omitempty"`
		Threshold float64 `json:"threshold,omitempty"`
	}

	type enrichGraphResponse struct {
		Message string                `json:"message"`
		Graph   *graph.KnowledgeGraph `json:"graph,omitempty"`
	}

	data := new(enrichGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, enrichGraphResponse{
			Message: "Invalid request body",
		})
	}
	if data.Graph == nil || len(data.Graph.Nodes) == 0 {
		return c.JSON(http.StatusBadRequest, enrichGraphResponse{
			Message: "Request must include a non-empty graph",
		})
	}

	app := c.(*middleware.AppContext).App

	var transforms []transform.Transform
	if data.Split {
		transforms = append(transforms, transform.NewSplitter("", data.MaxTokens))
	}
	transforms = append(transforms,
		&transform.SummaryExtractor{
			Client:   app.AiClient,
			NodeType: graph.NodeTypeChunk,
			Parallel: app.Parallel,
		},
		&transform.SummaryExtractor{
			Client:   app.AiClient,
			NodeType: graph.NodeTypeDocument,
			Parallel: app.Parallel,
		},
		&transform.KeyphrasesExtractor{
			Client:   app.AiClient,
			NodeType: graph.NodeTypeDocument,
			Parallel: app.Parallel,
		},
		&transform.SimilarityBuilder{
			Client:       app.AiClient,
			NodeType:     graph.NodeTypeChunk,
			Property:     graph.PropPageContent,
			RelationType: graph.PropCosineSimilarity,
			Threshold:    data.Threshold,
			Parallel:     app.Parallel,
		},
		&transform.SimilarityBuilder{
			Client:       app.AiClient,
			NodeType:     graph.NodeTypeDocument,
			Property:     graph.PropSummary,
			RelationType: graph.PropSummaryCosineSimilarity,
			Threshold:    data.Threshold,
			Parallel:     app.Parallel,
		},
	)

	ctx := c.Request().Context()
	if err := transform.Apply(ctx, data.Graph, transforms...); err != nil {
		logger.Error("[Transform] Enrichment failed", "err", err)
		return c.JSON(http.StatusInternalServerError, enrichGraphResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, enrichGraphResponse{
		Message: "Graph enriched successfully",
		Graph:   data.Graph,
	})
}
