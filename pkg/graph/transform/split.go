package transform

import (
	"context"
	"strings"

	"github.com/soumendrak/ragas/pkg/graph"

	"github.com/pkoukk/tiktoken-go"
)

// RelationChild links a document node to the chunk nodes split from it.
const RelationChild = "child"

// Splitter splits every document node's page content into token-limited
// chunk nodes, linked back to their document with child relationships.
type Splitter struct {
	// Encoder is the tiktoken encoding used to measure chunk sizes.
	Encoder string
	// MaxTokens caps the token count per chunk.
	MaxTokens int
}

// NewSplitter creates a splitter with the given encoding and token budget.
// Zero values fall back to o200k_base and 1024 tokens.
func NewSplitter(encoder string, maxTokens int) *Splitter {
	if encoder == "" {
		encoder = "o200k_base"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Splitter{Encoder: encoder, MaxTokens: maxTokens}
}

func (s *Splitter) Name() string {
	return "splitter"
}

// Apply splits each document node into chunk nodes. Documents without page
// content are skipped. Chunks inherit the document title when present.
func (s *Splitter) Apply(ctx context.Context, kg *graph.KnowledgeGraph) error {
	enc, err := tiktoken.GetEncoding(s.Encoder)
	if err != nil {
		return err
	}

	for _, doc := range kg.NodesOfType(graph.NodeTypeDocument) {
		if err := ctx.Err(); err != nil {
			return err
		}

		content, ok := doc.GetStringProperty(graph.PropPageContent)
		if !ok {
			continue
		}

		for _, chunkText := range splitByTokens(enc, content, s.MaxTokens) {
			properties := map[string]any{
				graph.PropPageContent: chunkText,
			}
			if title, ok := doc.GetStringProperty(graph.PropTitle); ok {
				properties[graph.PropTitle] = title
			}

			chunk, err := graph.NewNode(graph.NodeTypeChunk, properties)
			if err != nil {
				return err
			}
			kg.AddNode(chunk)
			if _, err := kg.AddRelationship(RelationChild, doc, chunk, nil); err != nil {
				return err
			}
		}
	}

	return nil
}

// splitByTokens packs sentences into chunks of at most maxTokens tokens.
// A single sentence longer than the budget becomes its own chunk rather
// than being cut mid-sentence.
func splitByTokens(enc *tiktoken.Tiktoken, text string, maxTokens int) []string {
	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))
		current = nil
		currentTokens = 0
	}

	for _, sentence := range sentences {
		tokens := len(enc.Encode(sentence, nil, nil))
		if currentTokens+tokens > maxTokens && len(current) > 0 {
			flush()
		}
		current = append(current, sentence)
		currentTokens += tokens
	}
	flush()

	return chunks
}

func splitIntoSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}

		for i := 0; i < len(trimmed); i++ {
			current.WriteByte(trimmed[i])
			if trimmed[i] != '.' && trimmed[i] != '!' && trimmed[i] != '?' {
				continue
			}
			// keep trailing punctuation and closing quotes with the sentence
			j := i + 1
			for j < len(trimmed) && (trimmed[j] == '.' || trimmed[j] == '!' || trimmed[j] == '?' ||
				trimmed[j] == '"' || trimmed[j] == '\'' || trimmed[j] == ')') {
				current.WriteByte(trimmed[j])
				j++
			}
			flush()
			i = j - 1
		}
	}
	flush()

	return sentences
}
