package plan_test

import (
	"context"
	"testing"

	"fit-companion/internal/database"
	"fit-companion/internal/plan"
)

func TestRepositoryActivePlanLifecycle(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	defer db.Close()

	repo := plan.NewRepository(db)

	// No plan yet: (nil, nil), not an error.
	wp, err := repo.GetActive(ctx, "u1")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if wp != nil {
		t.Fatal("Expected no active plan, got one")
	}

	first := []byte(`{"title":"Week 1","days":[{"day":"Monday","items":[{"name":"Oats","calories":400,"ingredients":["80 g oats"]}]}]}`)
	firstID, err := repo.SaveActive(ctx, "u1", "Week 1", first)
	if err != nil {
		t.Fatalf("SaveActive failed: %v", err)
	}

	second := []byte(`{"title":"Week 2","days":[]}`)
	secondID, err := repo.SaveActive(ctx, "u1", "Week 2", second)
	if err != nil {
		t.Fatalf("SaveActive failed: %v", err)
	}
	if secondID == firstID {
		t.Fatal("Expected a new plan row, got the same ID")
	}

	active, err := repo.GetActive(ctx, "u1")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if active == nil || active.Title != "Week 2" {
		t.Fatalf("Expected active plan 'Week 2', got %+v", active)
	}
	if active.ID != secondID {
		t.Errorf("Expected active plan ID %d, got %d", secondID, active.ID)
	}

	// The replaced plan is history, not gone.
	recent, err := repo.ListRecent(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 stored plans, got %d", len(recent))
	}
	var activeCount int
	for _, p := range recent {
		if p.Active {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("Expected exactly 1 active plan, got %d", activeCount)
	}
}

func TestRepositoryIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	defer db.Close()

	repo := plan.NewRepository(db)
	if _, err := repo.SaveActive(ctx, "u1", "Mine", []byte(`{"title":"Mine","days":[]}`)); err != nil {
		t.Fatalf("SaveActive failed: %v", err)
	}

	other, err := repo.GetActive(ctx, "u2")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if other != nil {
		t.Error("Expected no active plan for another user")
	}
}
