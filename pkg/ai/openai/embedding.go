package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soumendrak/ragas/internal/util"
	"github.com/soumendrak/ragas/pkg/ai"

	"github.com/openai/openai-go/v3"
)

const defaultDimensions = 1536

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model.
//
// Empty input yields a zero vector of the configured dimension instead of
// a request, so callers can embed property bags with absent values safely.
func (c *TestsetOpenAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
	if len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, dim), nil
	}

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{string(input)}},
		Model: openai.EmbeddingModel(c.embeddingModel),
	}

	start := time.Now()
	response, err := c.EmbeddingClient.Embeddings.New(ctx, body)
	if err != nil {
		return nil, err
	}
	duration := time.Since(start).Milliseconds()

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: int(response.Usage.PromptTokens),
		TotalTokens: int(response.Usage.TotalTokens),
		DurationMs:  duration,
	})

	if len(response.Data) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(response.Data))
	}

	vec := make([]float32, 0, dim)
	for _, v := range response.Data[0].Embedding {
		if len(vec) >= dim {
			break
		}
		vec = append(vec, float32(v))
	}
	if len(vec) < dim {
		padded := make([]float32, dim)
		copy(padded, vec)
		vec = padded
	}
	return vec, nil
}
