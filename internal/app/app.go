package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"fit-companion/internal/config"
	"fit-companion/internal/metrics"
	"fit-companion/internal/plan"
	"fit-companion/internal/planner"
	"fit-companion/internal/shopping"
	"fit-companion/internal/storage"
	"fit-companion/internal/tracker"
)

// App holds the application's dependencies and exposes the tracking
// operations the CLI and the Telegram bot drive.
type App struct {
	cfg          *config.Config
	planRepo     *plan.Repository
	nutrition    *tracker.NutritionTracker
	workouts     *tracker.WorkoutTracker
	shoppingRepo *shopping.Repository
	archive      *storage.PlanArchive
	generator    *planner.Generator
	metricsStore *metrics.Store

	now func() time.Time
}

// NewApp creates and initializes a new App instance. generator may be nil
// when no LLM key is configured; plan generation is then unavailable but
// every tracking operation still works.
func NewApp(
	cfg *config.Config,
	planRepo *plan.Repository,
	nutrition *tracker.NutritionTracker,
	workouts *tracker.WorkoutTracker,
	shoppingRepo *shopping.Repository,
	archive *storage.PlanArchive,
	generator *planner.Generator,
	metricsStore *metrics.Store,
) *App {
	return &App{
		cfg:          cfg,
		planRepo:     planRepo,
		nutrition:    nutrition,
		workouts:     workouts,
		shoppingRepo: shoppingRepo,
		archive:      archive,
		generator:    generator,
		metricsStore: metricsStore,
		now:          time.Now,
	}
}

// GeneratePlan asks the generator for a new weekly plan and installs it as
// the user's active plan. The previous plan is kept as inactive history.
func (a *App) GeneratePlan(ctx context.Context, userID, request string, prof planner.Profile) (*plan.WeeklyPlan, error) {
	if a.generator == nil {
		return nil, fmt.Errorf("plan generation is unavailable: no LLM configured")
	}

	generated, meta, err := a.generator.Generate(ctx, request, prof)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	if err := a.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record generation metrics: %v", err)
	}

	planID, err := a.planRepo.SaveActive(ctx, userID, generated.Plan.Title, generated.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to save generated plan: %w", err)
	}
	generated.Plan.ID = planID

	if err := a.archive.Save(userID, planID, generated.Raw); err != nil {
		log.Printf("Warning: failed to archive plan %d: %v", planID, err)
	}

	return generated.Plan, nil
}

// DaySummary is the tracking state of one calendar day.
type DaySummary struct {
	DayIndex      int
	Label         string
	Focus         string
	Plan          *plan.DayPlan
	NutritionLog  *tracker.DailyLog
	WorkoutLog    *tracker.DailyLog
	CalorieTarget int
}

// Today loads the active plan day and both daily logs for the current date.
func (a *App) Today(ctx context.Context, userID string) (*DaySummary, error) {
	wp, err := a.planRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wp == nil {
		return nil, tracker.NoActivePlanError{UserID: userID}
	}

	now := a.now()
	dayIndex := plan.DayIndex(now)
	date := tracker.DateOf(now)

	nutritionLog, err := a.nutrition.LoadDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	workoutLog, err := a.workouts.LoadDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	target, err := a.nutrition.DayTarget(ctx, userID, dayIndex)
	if err != nil {
		return nil, err
	}

	day := wp.Day(dayIndex)
	return &DaySummary{
		DayIndex:      dayIndex,
		Label:         day.Label,
		Focus:         day.Focus,
		Plan:          day,
		NutritionLog:  nutritionLog,
		WorkoutLog:    workoutLog,
		CalorieTarget: target,
	}, nil
}

// ToggleMeal flips one meal's consumed flag for the given plan day.
func (a *App) ToggleMeal(ctx context.Context, userID string, day, item int) (*tracker.DailyLog, error) {
	return a.nutrition.ToggleItem(ctx, userID, plan.ItemKey{Day: day, Item: item})
}

// ToggleExercise flips one exercise's completion flag for the given plan day.
func (a *App) ToggleExercise(ctx context.Context, userID string, day, item int, note string) (*tracker.DailyLog, error) {
	return a.workouts.ToggleExercise(ctx, userID, plan.ItemKey{Day: day, Item: item}, note)
}

// FinishSession records the completed exercises of a day as a workout session.
func (a *App) FinishSession(ctx context.Context, userID string, day int) (*tracker.SessionResult, error) {
	return a.workouts.FinishSession(ctx, userID, day)
}

// ShoppingList aggregates the ingredients of the remaining plan days into a
// merged, forward-looking shopping list and persists it for the active plan.
func (a *App) ShoppingList(ctx context.Context, userID string) ([]string, error) {
	wp, err := a.planRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wp == nil {
		return nil, tracker.NoActivePlanError{UserID: userID}
	}

	fromDay := plan.DayIndex(a.now())
	items := shopping.Aggregate(shopping.RemainingIngredients(wp, fromDay))

	if _, err := a.shoppingRepo.Save(ctx, &shopping.ShoppingList{
		UserID:  userID,
		PlanID:  wp.ID,
		FromDay: fromDay,
		Items:   items,
	}); err != nil {
		// The list is still usable; only its persisted copy is stale.
		log.Printf("Warning: failed to save shopping list for plan %d: %v", wp.ID, err)
	}

	return items, nil
}
