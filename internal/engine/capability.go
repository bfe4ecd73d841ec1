package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/loomknot/loom/internal/llm"
	"github.com/loomknot/loom/pkg/types"
)

// Capability is the remote intelligence the engine depends on. Every method
// may fail for remote reasons (timeout, rate limit, circuit open, malformed
// output); the linker treats those failures as recoverable and continues with
// what it has.
type Capability interface {
	// ExtractEntities pulls named entities out of free text.
	ExtractEntities(ctx context.Context, text string) (types.EntityBag, error)

	// Embed produces a vector embedding for similarity matching.
	Embed(ctx context.Context, text string) ([]float32, error)

	// DeriveActionItems pulls discrete actionable statements out of
	// meeting text, in document order.
	DeriveActionItems(ctx context.Context, text string) ([]string, error)

	// Summarize produces a short prose summary of an activity outline.
	Summarize(ctx context.Context, text string) (string, error)

	// EmbeddingModel names the model behind Embed, recorded alongside
	// stored embeddings.
	EmbeddingModel() string
}

// ModelCapability adapts the llm package's generators to the Capability
// interface, pairing each prompt template with its response parser.
type ModelCapability struct {
	text  llm.TextGenerator
	embed llm.EmbeddingGenerator
}

// NewModelCapability creates a Capability backed by the given generators.
func NewModelCapability(text llm.TextGenerator, embed llm.EmbeddingGenerator) *ModelCapability {
	return &ModelCapability{text: text, embed: embed}
}

// ExtractEntities prompts the model for strict JSON entities and parses the
// response into an EntityBag.
func (c *ModelCapability) ExtractEntities(ctx context.Context, text string) (types.EntityBag, error) {
	response, err := c.text.Complete(ctx, llm.EntityExtractionPrompt(text))
	if err != nil {
		return types.EntityBag{}, fmt.Errorf("entity extraction failed: %w", err)
	}
	bag, err := llm.ParseEntityBag(response)
	if err != nil {
		return types.EntityBag{}, fmt.Errorf("entity extraction returned malformed output: %w", err)
	}
	return bag, nil
}

// Embed produces an embedding vector for the given text.
func (c *ModelCapability) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding, err := c.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	return embedding, nil
}

// DeriveActionItems prompts the model for actionable statements and parses
// the JSON response into an ordered list.
func (c *ModelCapability) DeriveActionItems(ctx context.Context, text string) ([]string, error) {
	response, err := c.text.Complete(ctx, llm.ActionItemPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("action item derivation failed: %w", err)
	}
	items, err := llm.ParseActionItems(response)
	if err != nil {
		return nil, fmt.Errorf("action item derivation returned malformed output: %w", err)
	}
	return items, nil
}

// Summarize produces a brief prose summary of the given outline.
func (c *ModelCapability) Summarize(ctx context.Context, text string) (string, error) {
	response, err := c.text.Complete(ctx, llm.SummarizationPrompt(text))
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// EmbeddingModel names the configured embedding model.
func (c *ModelCapability) EmbeddingModel() string {
	return c.embed.GetModel()
}

var _ Capability = (*ModelCapability)(nil)
