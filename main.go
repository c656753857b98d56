package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/greekbot/internal/bot"
	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/internal/quiz"
)

func main() {
	// .env is optional, environment variables win either way
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := database.SeedDemoWords(ctx); err != nil {
			log.Fatalf("Failed to seed demo words: %v", err)
		}
	}

	config, err := bot.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	engine, err := quiz.NewEngine(
		database.NewWordRepository(),
		database.NewStatsRepository(),
		database.NewUserRepository(),
		config.Difficulty,
	)
	if err != nil {
		log.Fatalf("Failed to create quiz engine: %v", err)
	}

	b, err := bot.New(engine, config)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Bot error: %v", err)
	}

	b.Stop()
	log.Println("Bot stopped successfully")
}
