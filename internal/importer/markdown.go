// Package importer ingests markdown files as notes and runs each one through
// the linking pass, so a bulk import ends up as linked as notes typed in by
// hand.
package importer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loomknot/loom/internal/engine"
	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/pkg/types"
)

// frontMatter is the YAML header an exported markdown note may carry.
type frontMatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// MarkdownImporter imports markdown files as notes.
type MarkdownImporter struct {
	store  storage.Store
	linker *engine.Linker
}

// NewMarkdownImporter creates an importer over the given store and linker.
func NewMarkdownImporter(store storage.Store, linker *engine.Linker) *MarkdownImporter {
	return &MarkdownImporter{store: store, linker: linker}
}

// ImportDirectory imports every .md file under dir for the owner and returns
// how many notes were created. Files that fail to import are logged and
// skipped; the rest of the batch continues.
func (m *MarkdownImporter) ImportDirectory(ctx context.Context, ownerID, dir string) (int, error) {
	if ownerID == "" || dir == "" {
		return 0, storage.ErrInvalidInput
	}

	imported := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		if _, err := m.ImportFile(ctx, ownerID, path); err != nil {
			log.Printf("Importer: skipping %s: %v", path, err)
			return nil
		}
		imported++
		return nil
	})
	if err != nil {
		return imported, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	log.Printf("Importer: imported %d notes from %s", imported, dir)
	return imported, nil
}

// ImportFile imports a single markdown file as a note and links it. The
// filename (minus extension) is the fallback title when the front matter has
// none.
func (m *MarkdownImporter) ImportFile(ctx context.Context, ownerID, path string) (*types.Note, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	meta, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid front matter in %s: %w", path, err)
	}

	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	note := &types.Note{
		ID:      types.NewID("note"),
		OwnerID: ownerID,
		Title:   title,
		Text:    strings.TrimSpace(body),
		Tags:    meta.Tags,
	}
	if err := m.store.StoreNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to store imported note: %w", err)
	}

	// Linking failures don't fail the import; the note is already stored
	// and a later pass can pick it up.
	if _, err := m.linker.LinkNote(ctx, note.ID); err != nil {
		log.Printf("Importer: linking failed for %s: %v", note.ID, err)
	}
	return note, nil
}

// splitFrontMatter separates an optional YAML front-matter block (delimited
// by --- lines at the top of the file) from the markdown body.
func splitFrontMatter(content string) (frontMatter, string, error) {
	var meta frontMatter

	trimmed := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(trimmed, "---\n") && !strings.HasPrefix(trimmed, "---\r\n") {
		return meta, content, nil
	}

	rest := trimmed[strings.Index(trimmed, "\n")+1:]
	endIdx := strings.Index(rest, "\n---")
	if endIdx == -1 {
		return meta, content, nil
	}

	header := rest[:endIdx]
	body := rest[endIdx+len("\n---"):]
	body = strings.TrimPrefix(body, "\r")
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return frontMatter{}, "", err
	}
	return meta, body, nil
}
