package config

import (
	"fmt"
	"log"
	"os"

	"macrolog/auth"
	"macrolog/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Load reads .env if present. Missing files are fine outside development.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
}

// Offline reports whether the process runs against the local blob store
// instead of postgres.
func Offline() bool {
	return os.Getenv("MODE") == "offline"
}

// DataPath is the sqlite file holding the local key-value store.
func DataPath() string {
	if p := os.Getenv("DATA_PATH"); p != "" {
		return p
	}
	return "macrolog.db"
}

// InitDB opens postgres and migrates the schema. Fatal on failure: connected
// mode cannot run without its authoritative store.
func InitDB() *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&auth.Credential{},
		&models.UserProfile{},
		&models.FoodEntry{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}
