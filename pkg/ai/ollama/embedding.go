package ollama

import (
	"context"
	"strings"

	"github.com/soumendrak/ragas/internal/util"
	"github.com/soumendrak/ragas/pkg/ai"

	"github.com/ollama/ollama/api"
)

const defaultDimensions = 1024

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama.
//
// Empty input yields a zero vector of the configured dimension instead of
// a request.
func (c *TestsetOllamaClient) GenerateEmbedding(
	ctx context.Context,
	input []byte,
) ([]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
	if len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, dim), nil
	}

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: string(input),
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.Client.Embed(ctx, req)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	out := make([]float32, 0, dim)
	for _, v := range res.Embeddings {
		for _, val := range v {
			if len(out) >= dim {
				break
			}
			out = append(out, float32(val))
		}
	}
	return out, nil
}
