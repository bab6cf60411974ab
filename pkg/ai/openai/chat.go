package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/soumendrak/ragas/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

// GenerateCompletion sends a single-turn prompt to the chat model and
// returns the generated completion as plain text.
func (c *TestsetOpenAIClient) GenerateCompletion(
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

	msgs := []openai.ChatCompletionMessageParamUnion{}
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(options.Model),
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}

	if options.Thinking != "" {
		// gpt-5 models only support temperature 1.0 when reasoning is enabled
		if c.chatURL == "" {
			body.Temperature = openai.Float(1.0)
		}
		body.ReasoningEffort = shared.ReasoningEffort(options.Thinking)
	}

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}
	duration := time.Since(start).Milliseconds()

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   duration,
	})

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response from model")
	}
	return response.Choices[0].Message.Content, nil
}

// GenerateCompletionWithFormat sends a prompt to the chat model and
// unmarshals the response into the provided output struct, using a JSON
// schema derived from the struct to enforce structure.
//
// This is the path every theme, concept, question, critic, and answer
// generation goes through.
func (c *TestsetOpenAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	schema := ai.GenerateSchema(out)
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	options := ai.GenerateOptions{
		Model:       c.generationModel,
		Temperature: 0.1,
		Thinking:    "",
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(options.Model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}

	if options.Thinking != "" {
		// gpt-5 models only support temperature 1.0 when reasoning is enabled
		if c.chatURL == "" {
			body.Temperature = openai.Float(1.0)
		}
		body.ReasoningEffort = shared.ReasoningEffort(options.Thinking)
	}

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		return err
	}
	duration := time.Since(start).Milliseconds()

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   duration,
	})

	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response from model")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return fmt.Errorf("empty response from model (finish_reason: %s)", response.Choices[0].FinishReason)
	}
	return ai.UnmarshalFlexible(message, out)
}
