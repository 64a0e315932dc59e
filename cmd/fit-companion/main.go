package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
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
	"fit-companion/internal/tracker"
	"fit-companion/internal/workout"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	planRepo := plan.NewRepository(db.SQL)
	logRepo := tracker.NewRepository(db.SQL)
	recorder := workout.NewRecorder(db.SQL)
	shoppingRepo := shopping.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	archive, err := storage.NewPlanArchive(filepath.Join(filepath.Dir(cfg.DatabasePath), "plans"))
	if err != nil {
		log.Fatalf("Failed to initialize plan archive: %v", err)
	}

	// The generator is optional: without an LLM key every tracking command
	// still works against the stored plan.
	var generator *planner.Generator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		if closer, ok := geminiClient.(llm.Closer); ok {
			defer closer.Close()
		}
		generator = planner.NewGenerator(geminiClient)
	} else if cfg.GroqAPIKey != "" {
		generator = planner.NewGenerator(llm.NewGroqClient(cfg))
	}

	nutrition := tracker.NewNutritionTracker(logRepo, planRepo)
	workouts := tracker.NewWorkoutTracker(logRepo, planRepo, recorder)

	application := app.NewApp(cfg, planRepo, nutrition, workouts, shoppingRepo, archive, generator, metricsStore)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	userID := cfg.DefaultUserID

	switch os.Args[1] {
	case "generate":
		request := strings.Join(os.Args[2:], " ")
		if request == "" {
			log.Fatal("Usage: fit-companion generate <plan request>")
		}
		wp, err := application.GeneratePlan(ctx, userID, request, planner.Profile{Goal: request})
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
		printPlan(wp)
	case "today":
		summary, err := application.Today(ctx, userID)
		if err != nil {
			log.Fatalf("Failed to load today: %v", err)
		}
		printToday(summary)
	case "toggle-meal":
		day, item := parseKeyArgs("toggle-meal")
		logRecord, err := application.ToggleMeal(ctx, userID, day, item)
		if err != nil {
			log.Fatalf("Toggle failed: %v", err)
		}
		fmt.Printf("Totals: %d kcal, %dg protein (%d items checked)\n",
			logRecord.Totals.Calories, logRecord.Totals.Protein, logRecord.CompletedCount())
	case "toggle-exercise":
		day, item := parseKeyArgs("toggle-exercise")
		logRecord, err := application.ToggleExercise(ctx, userID, day, item, "")
		if err != nil {
			log.Fatalf("Toggle failed: %v", err)
		}
		fmt.Printf("Completed exercises today: %d\n", logRecord.CompletedCount())
	case "finish":
		result, err := application.FinishSession(ctx, userID, todayIndex())
		if err != nil {
			log.Fatalf("Finish failed: %v", err)
		}
		fmt.Printf("Session %s recorded: %d exercises, %d sets\n",
			result.SessionID, result.CompletedExercises, result.RecordedSets)
		if len(result.DroppedExercises) > 0 {
			fmt.Printf("Skipped (not in catalog): %s\n", strings.Join(result.DroppedExercises, ", "))
		}
	case "shop":
		items, err := application.ShoppingList(ctx, userID)
		if err != nil {
			log.Fatalf("Failed to build shopping list: %v", err)
		}
		fmt.Println("=== SHOPPING LIST ===")
		for _, item := range items {
			fmt.Printf("- %s\n", item)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func todayIndex() int {
	return plan.DayIndex(time.Now())
}

func parseKeyArgs(verb string) (int, int) {
	if len(os.Args) < 4 {
		log.Fatalf("Usage: fit-companion %s <day 0-6> <item>", verb)
	}
	var day, item int
	if _, err := fmt.Sscanf(os.Args[2], "%d", &day); err != nil {
		log.Fatalf("Invalid day index %q", os.Args[2])
	}
	if _, err := fmt.Sscanf(os.Args[3], "%d", &item); err != nil {
		log.Fatalf("Invalid item index %q", os.Args[3])
	}
	return day, item
}

func printPlan(wp *plan.WeeklyPlan) {
	fmt.Printf("\n=== %s ===\n", wp.Title)
	for _, d := range wp.Days {
		fmt.Printf("%-10s", d.Label)
		if d.Focus != "" {
			fmt.Printf(" (%s)", d.Focus)
		}
		fmt.Println()
		for _, m := range d.Meals() {
			fmt.Printf("  meal     %-30s %5d kcal\n", m.Meal.Name, m.Meal.Calories)
		}
		for _, ex := range d.Exercises() {
			fmt.Printf("  workout  %-30s %dx%d\n", ex.Exercise.Name, ex.Exercise.Sets.Int(), ex.Exercise.Reps.Int())
		}
	}
}

func printToday(s *app.DaySummary) {
	fmt.Printf("\n=== %s", s.Label)
	if s.Focus != "" {
		fmt.Printf(" — %s", s.Focus)
	}
	fmt.Printf(" ===\n%d / %d kcal, %dg protein\n\n",
		s.NutritionLog.Totals.Calories, s.CalorieTarget, s.NutritionLog.Totals.Protein)

	for _, m := range s.Plan.Meals() {
		mark := " "
		if s.NutritionLog.Done(plan.ItemKey{Day: s.DayIndex, Item: m.Index}) {
			mark = "x"
		}
		fmt.Printf("  [%s] %2d  %-30s %5d kcal\n", mark, m.Index, m.Meal.Name, m.Meal.Calories)
	}
	for _, ex := range s.Plan.Exercises() {
		mark := " "
		if s.WorkoutLog.Done(plan.ItemKey{Day: s.DayIndex, Item: ex.Index}) {
			mark = "x"
		}
		fmt.Printf("  [%s] %2d  %-30s %dx%d\n", mark, ex.Index, ex.Exercise.Name, ex.Exercise.Sets.Int(), ex.Exercise.Reps.Int())
	}
}

func printUsage() {
	fmt.Println("Usage: fit-companion <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate <request>          Generate and activate a weekly plan")
	fmt.Println("  today                       Show today's meals, workout and totals")
	fmt.Println("  toggle-meal <day> <item>    Check/uncheck a meal (today only)")
	fmt.Println("  toggle-exercise <day> <item> Check/uncheck an exercise")
	fmt.Println("  finish                      Record today's completed exercises as a session")
	fmt.Println("  shop                        Aggregate the remaining week into a shopping list")
	fmt.Println("  metrics-cleanup             Remove old metric records")
}
