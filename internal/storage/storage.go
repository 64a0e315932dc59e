package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fit-companion/internal/plan"
)

// PlanArchive provides file-based storage of generated plan JSON, one file
// per plan, kept alongside the database row as a plain-text backup.
type PlanArchive struct {
	basePath string
}

// NewPlanArchive creates a new PlanArchive and ensures the base directory exists.
func NewPlanArchive(basePath string) (*PlanArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", basePath, err)
	}
	return &PlanArchive{basePath: basePath}, nil
}

func (a *PlanArchive) path(userID string, planID int64) string {
	return filepath.Join(a.basePath, fmt.Sprintf("%s_plan_%d.json", userID, planID))
}

// Save writes the raw generator JSON for a plan. Indented for hand inspection.
func (a *PlanArchive) Save(userID string, planID int64, raw []byte) error {
	var pretty map[string]any
	if err := json.Unmarshal(raw, &pretty); err != nil {
		return fmt.Errorf("failed to parse plan JSON for archiving: %w", err)
	}
	data, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan for archiving: %w", err)
	}

	if err := os.WriteFile(a.path(userID, planID), data, 0644); err != nil {
		return fmt.Errorf("failed to write plan archive file: %w", err)
	}
	return nil
}

// Load reads an archived plan back into its parsed form.
func (a *PlanArchive) Load(userID string, planID int64) (*plan.WeeklyPlan, error) {
	data, err := os.ReadFile(a.path(userID, planID))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan archive file: %w", err)
	}

	wp, err := plan.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse archived plan: %w", err)
	}
	wp.ID = planID
	return wp, nil
}

// List returns the archived plan IDs for a user, ascending.
func (a *PlanArchive) List(userID string) ([]int64, error) {
	pattern := filepath.Join(a.basePath, fmt.Sprintf("%s_plan_*.json", userID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob plan archive: %w", err)
	}

	var ids []int64
	for _, m := range matches {
		var id int64
		base := filepath.Base(m)
		if _, err := fmt.Sscanf(base, userID+"_plan_%d.json", &id); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
