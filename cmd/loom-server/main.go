// Command loom-server runs the Loom linking engine behind an HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/loomknot/loom/internal/config"
	"github.com/loomknot/loom/internal/engine"
	"github.com/loomknot/loom/internal/importer"
	"github.com/loomknot/loom/internal/llm"
	"github.com/loomknot/loom/internal/server"
	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/internal/storage/postgres"
	"github.com/loomknot/loom/internal/storage/sqlite"
)

var (
	importDir   = flag.String("import", "", "Import markdown notes from this directory and exit")
	importOwner = flag.String("owner", "local", "Owner ID used for imported notes")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	textGen, err := llm.NewTextGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create text generator: %v", err)
	}
	embedGen, err := llm.NewEmbeddingGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create embedding generator: %v", err)
	}

	linker := engine.NewLinker(store, engine.NewModelCapability(textGen, embedGen))

	if *importDir != "" {
		count, err := importer.NewMarkdownImporter(store, linker).
			ImportDirectory(context.Background(), *importOwner, *importDir)
		if err != nil {
			log.Fatalf("Import failed after %d notes: %v", count, err)
		}
		log.Printf("Imported %d notes, exiting", count)
		return
	}

	srv := server.NewServer(cfg, store, linker)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Engine {
	case "postgres":
		return postgres.NewStore(cfg.Storage.PostgresDSN)
	default:
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return sqlite.NewStore(cfg.Storage.SQLitePath)
	}
}
