package main

import (
	"log"

	"document-intel-platform/internal/config"
	"document-intel-platform/internal/store"
)

// Applies the documents schema, including additive column migrations for
// databases created by older builds.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	if err := store.EnsureSchema(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Printf("Schema up to date at %s", cfg.DBPath)
}
