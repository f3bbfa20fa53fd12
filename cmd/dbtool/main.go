package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"pickup-commit-service/internal/adapters/repositories"
	"pickup-commit-service/internal/config"
	"pickup-commit-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	store, err := db.OpenPostgres(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/bookings.json")
	if err := initAndSeed(store, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(store *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchemaPg(store); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding bookings...")
	if err := repositories.SeedFromJSONPg(store, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
