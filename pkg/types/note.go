package types

import "time"

// Note represents a single free-form note written by a user.
// Notes are the primary capture surface: the linking engine reads the text,
// extracts entities and an embedding, and wires the note into the graph of
// people, meetings, and sibling notes.
type Note struct {
	// Core identification fields
	ID        string    `json:"id"`         // Unique identifier (format: note:<uuid8>)
	OwnerID   string    `json:"owner_id"`   // Opaque owner identifier; all queries are scoped by it
	Title     string    `json:"title"`      // Short title
	Text      string    `json:"text"`       // Raw note content
	Tags      []string  `json:"tags,omitempty"` // User-defined tags
	CreatedAt time.Time `json:"created_at"` // When the note was created
	UpdatedAt time.Time `json:"updated_at"` // Last update timestamp

	// Linking fields (maintained by the engine)
	LinkedRecordIDs []string `json:"linked_record_ids,omitempty"` // Sibling notes related by similarity; never contains the note's own ID
	LinkedPersonIDs []string `json:"linked_person_ids,omitempty"` // People mentioned in the text

	// Embedding fields
	Embedding          []float32 `json:"embedding,omitempty"`           // Vector embedding for similarity matching
	EmbeddingModel     string    `json:"embedding_model,omitempty"`     // Model used for embedding
	EmbeddingDimension int       `json:"embedding_dimension,omitempty"` // Dimension of embedding vector
	ContentHash        string    `json:"content_hash,omitempty"`        // SHA-256 of text; embedding is recomputed only when this changes
}

// Content returns the text used for extraction and embedding.
// Title and body are combined so that a mention in either is linkable.
func (n *Note) Content() string {
	if n.Title == "" {
		return n.Text
	}
	return n.Title + "\n" + n.Text
}
