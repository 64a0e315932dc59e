package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fit-companion/internal/app"
	"fit-companion/internal/config"
	"fit-companion/internal/database"
	"fit-companion/internal/llm"
	"fit-companion/internal/metrics"
	"fit-companion/internal/plan"
	"fit-companion/internal/planner"
	"fit-companion/internal/shopping"
	"fit-companion/internal/storage"
	"fit-companion/internal/telegram"
	"fit-companion/internal/tracker"
	"fit-companion/internal/workout"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize the SQLite database
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 3. Initialize repositories
	planRepo := plan.NewRepository(db.SQL)
	logRepo := tracker.NewRepository(db.SQL)
	recorder := workout.NewRecorder(db.SQL)
	shoppingRepo := shopping.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	archive, err := storage.NewPlanArchive(filepath.Join(filepath.Dir(cfg.DatabasePath), "plans"))
	if err != nil {
		log.Fatalf("Failed to initialize plan archive: %v", err)
	}

	// 4. Initialize the generator when an LLM key is available
	var generator *planner.Generator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		if closer, ok := geminiClient.(llm.Closer); ok {
			defer closer.Close()
		}
		generator = planner.NewGenerator(geminiClient)
	} else if cfg.GroqAPIKey != "" {
		generator = planner.NewGenerator(llm.NewGroqClient(cfg))
	}

	// 5. Initialize Services
	nutrition := tracker.NewNutritionTracker(logRepo, planRepo)
	workouts := tracker.NewWorkoutTracker(logRepo, planRepo, recorder)
	application := app.NewApp(cfg, planRepo, nutrition, workouts, shoppingRepo, archive, generator, metricsStore)

	// 6. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 7. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
