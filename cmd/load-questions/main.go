package main

import (
	"flag"
	"log"

	"trivia-lobby/internal/config"
	"trivia-lobby/internal/db"
)

func main() {
	filePath := flag.String("file", "questions.csv", "path to questions csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	inserted, err := db.LoadQuestionLibrary(conn, *filePath)
	if err != nil {
		log.Fatalf("failed to load questions: %v", err)
	}
	log.Printf("loaded %d questions", inserted)
}
