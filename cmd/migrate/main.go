package main

import (
	"log"

	"ai-fitness-be/internal/config"
	"ai-fitness-be/internal/model"
	"ai-fitness-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	log.Println("Running migrations...")
	if err := db.AutoMigrate(
		&model.User{},
		&model.ChunkEmbedding{},
		&model.ResearchResult{},
	); err != nil {
		log.Panicf("Migration failed: %v", err)
	}

	// AutoMigrate cannot express the ANN index; cosine ops match the
	// retrieval query operator.
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_embedding ON chunk_embeddings USING hnsw (embedding_value vector_cosine_ops)").Error; err != nil {
		log.Printf("Warning: could not create vector index: %v", err)
	}

	log.Println("Migrations complete")
}
