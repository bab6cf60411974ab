package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/soumendrak/ragas/pkg/ai"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
)

// GenerateCompletion sends a single-turn prompt and returns assistant text.
func (c *TestsetOllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:       c.generationModel,
		Temperature: 0.3,
		Thinking:    "",
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sys := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sys})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": options.Temperature},
	}

	if options.Thinking != "" {
		req.Think = &api.ThinkValue{
			Value: options.Thinking,
		}
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return "", err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	return final.Message.Content, nil
}

// GenerateCompletionWithFormat sends a prompt with a JSON-schema response
// format derived from out and unmarshals the assistant's reply into it.
func (c *TestsetOllamaClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return errors.New("out must be a non-nil pointer")
	}

	schemaObj := ai.GenerateSchema(out)
	formatBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return err
	}
	var format json.RawMessage = formatBytes

	options := ai.GenerateOptions{
		Model:       c.generationModel,
		Temperature: 0.1,
		Thinking:    "",
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sys := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sys})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Format:   format,
		Options:  map[string]any{"temperature": options.Temperature},
	}

	if options.Thinking != "" {
		req.Think = &api.ThinkValue{
			Value: options.Thinking,
		}
	}

	// Size the context window to the prompt when it exceeds the default.
	tokens := 200
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return err
	}
	tokens += len(enc.Encode(prompt, nil, nil))
	if tokens > 4096 {
		req.Options["num_ctx"] = tokens
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.reqLock.Release(1)

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	return ai.UnmarshalFlexible(final.Message.Content, out)
}
