package main

import (
	"io"
	"log"

	"github.com/google/logger"
	"github.com/joho/godotenv"

	"github.com/luxewin/raffle-api/internal/server"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, relying on environment.")
	}

	defer logger.Init("raffle-api", true, false, io.Discard).Close()

	if err := server.Start(); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}
