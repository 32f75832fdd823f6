package main

import (
	"context"
	"log"

	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/model"
	"legal-analyzer-be/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error: Failed to load config:", err)
	}
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(context.Background(), cfg.Database.Connection, cfg.App.Debug)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	defer database.Close(db)

	log.Println("Step 1: Setting up extensions...")
	// gen_random_uuid() is core from Postgres 13; older servers need pgcrypto.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to enable pgcrypto: %v. Continuing...", err)
	}

	models := model.Migratable()
	log.Printf("Step 2: Running AutoMigrate for %d tables...", len(models))
	if err := database.Migrate(db, models...); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	log.Println("Step 3: Creating vector search index...")
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_document_chunks_key_chunk ON document_chunks (index_key, chunk_index);`).Error; err != nil {
		log.Printf("Warn: Failed to create chunk index: %v", err)
	}

	log.Println("Migration completed successfully.")
}
