package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/pkg/types"
)

// NoteMatch is one scored hit from a semantic search.
type NoteMatch struct {
	Note  types.Note `json:"note"`
	Score float64    `json:"score"`
}

// SearchNotes embeds the query and ranks the owner's recent notes by cosine
// similarity. Unlike the linking pass, search cannot degrade gracefully
// without an embedding, so a capability failure is returned to the caller.
func (l *Linker) SearchNotes(ctx context.Context, ownerID, query string, limit int) ([]NoteMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, storage.ErrInvalidInput
	}
	limit = storage.NormalizeLimit(limit)

	queryEmbedding, err := l.capability.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	candidates, err := l.store.RecentNotes(ctx, ownerID, storage.MaxCandidateLimit, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load notes for search: %w", err)
	}

	vectors := make([][]float32, len(candidates))
	for i := range candidates {
		vectors[i] = candidates[i].Embedding
	}

	results := make([]NoteMatch, 0, limit)
	for _, match := range Rank(queryEmbedding, vectors) {
		if len(results) >= limit {
			break
		}
		if match.Score <= 0 {
			break
		}
		results = append(results, NoteMatch{
			Note:  candidates[match.Index],
			Score: match.Score,
		})
	}
	return results, nil
}
