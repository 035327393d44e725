package main

import (
	"log"

	"document-tracker-api/config"
	"document-tracker-api/models"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.TrackedDocument{},
		&models.RouteLog{},
		&models.Remark{},
		&models.RoutingSequence{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("Migration completed")
}
