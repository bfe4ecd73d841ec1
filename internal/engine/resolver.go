package engine

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/pkg/types"
)

// resolvePeople maps extracted person names to stored person records.
// Matching is exact and case-insensitive per owner; names with no stored
// record are discarded, never auto-created. Each name resolves independently,
// so one lookup failure doesn't lose the rest.
func (l *Linker) resolvePeople(ctx context.Context, ownerID string, names []string) []types.Person {
	resolved := make([]types.Person, 0, len(names))
	seen := make(map[string]bool)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		person, err := l.store.FindPersonByName(ctx, ownerID, name)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Printf("Linker: person lookup failed for %q: %v", name, err)
			continue
		}
		resolved = append(resolved, *person)
	}
	return resolved
}
