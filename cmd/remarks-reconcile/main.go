package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"document-tracker-api/config"
	"document-tracker-api/jobs"
	"document-tracker-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var timeout string
	flag.StringVar(&timeout, "timeout", "30m", "maximum run time (Go duration)")
	flag.Parse()

	limit, err := parseTimeout(timeout)
	if err != nil {
		log.Fatalf("invalid timeout: %v", err)
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	config.InitDB()

	fixed, err := jobs.RunRemarksReconcile(context.Background(), limit, services.NewRemarkService(config.DB), config.Logger)
	fmt.Printf("Documents corrected: %d\n", fixed)
	if err != nil {
		os.Exit(1)
	}
}
