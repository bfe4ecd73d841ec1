package llm

import "context"

// TextGenerator is the interface for LLM text completion.
// All engine prompts use single-string completion style (not chat).
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}

// EmbeddingGenerator is the interface for generating vector embeddings.
// The vector dimension is fixed per model; callers must not mix models
// within one deployment.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}
