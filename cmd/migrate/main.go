package main

import (
	"log"
	"os"

	"sigment-be/internal/model"
	"sigment-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	// Extensions first; AutoMigrate cannot create them.
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	models := []interface{}{
		&model.Organization{},
		&model.User{},
		&model.Pillar{},
		&model.Cluster{},
		&model.Note{},
		&model.ClusterSnapshot{},
		&model.LifecycleEvent{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// The cosine index makes the clustering candidate search an index scan.
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_notes_embedding_cosine
		 ON notes USING hnsw (embedding vector_cosine_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_org_pillar_status
		 ON notes (organization_id, pillar_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_cluster_snapshots_cluster_created
		 ON cluster_snapshots (cluster_id, created_at DESC);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed via GORM.")
}
