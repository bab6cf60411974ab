package ai

import "context"

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	Thinking      string   // Extended thinking mode configuration
}

// ModelMetrics contains accumulated performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithThinking returns a GenerateOption that enables extended thinking mode.
// The thinking parameter specifies the thinking budget or mode configuration.
func WithThinking(thinking string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Thinking = thinking
	}
}

// Client defines the interface for AI operations used during testset synthesis.
// Implementations handle plain text generation, schema-constrained structured
// generation, and embeddings.
//
// Transport errors and malformed structured output surface as Go errors;
// a well-formed but low-quality generation is not an error at this layer
// (the testset critic judges quality).
type Client interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)

	ResetMetrics()
	GetMetrics() ModelMetrics
}
