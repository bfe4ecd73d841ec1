package types

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID generates a prefixed record identifier, e.g. "note:1a2b3c4d".
// The short form keeps IDs readable in logs and link tables while staying
// unique enough for a single owner's dataset.
func NewID(kind string) string {
	return fmt.Sprintf("%s:%s", kind, uuid.NewString()[:8])
}
