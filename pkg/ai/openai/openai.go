package openai

import (
	"math"
	"sync"

	"github.com/soumendrak/ragas/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// TestsetOpenAIClient implements ai.Client against OpenAI-compatible APIs.
// It manages separate clients for chat/completion and embedding endpoints,
// which may point at different deployments.
//
// A TestsetOpenAIClient should be created using NewTestsetOpenAIClient.
type TestsetOpenAIClient struct {
	generationModel string
	embeddingModel  string

	chatURL      string
	chatKey      string
	embeddingURL string
	embeddingKey string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewTestsetOpenAIClientParams defines the configuration parameters for
// creating a new TestsetOpenAIClient.
//
// GenerationModel is used for all question, theme, and answer generation.
// EmbeddingModel is used for similarity transforms.
// The URL/Key pairs configure the respective API endpoints.
type NewTestsetOpenAIClientParams struct {
	GenerationModel string
	EmbeddingModel  string

	ChatURL      string
	ChatKey      string
	EmbeddingURL string
	EmbeddingKey string
}

// NewTestsetOpenAIClient creates and returns a new client configured with
// the provided parameters.
//
// Example:
//
//	client := openai.NewTestsetOpenAIClient(openai.NewTestsetOpenAIClientParams{
//		GenerationModel: "gpt-4o-mini",
//		EmbeddingModel:  "text-embedding-3-small",
//		ChatKey:         os.Getenv("OPENAI_API_KEY"),
//		EmbeddingKey:    os.Getenv("OPENAI_API_KEY"),
//	})
func NewTestsetOpenAIClient(
	params NewTestsetOpenAIClientParams,
) *TestsetOpenAIClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)
	embedClient := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)

	return &TestsetOpenAIClient{
		generationModel: params.GenerationModel,
		embeddingModel:  params.EmbeddingModel,

		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,
		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		ChatClient:      chatClient,
		EmbeddingClient: embedClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *TestsetOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *TestsetOpenAIClient) GetMetrics() ai.ModelMetrics {
	return c.metrics
}

func (c *TestsetOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(c.metrics.TotalTokens) * 1000.0) / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}
