package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fit-companion/internal/llm"
	"fit-companion/internal/plan"
)

// Profile carries the user context the generator builds a week around.
type Profile struct {
	Goal          string // e.g. "fat loss", "muscle gain"
	CalorieTarget int
	TrainingDays  int
	Restrictions  []string
}

// GeneratedPlan pairs the parsed weekly plan with the raw JSON it came from,
// so the caller can persist the wire form untouched.
type GeneratedPlan struct {
	Plan *plan.WeeklyPlan
	Raw  []byte
}

// Generator asks an LLM for a weekly nutrition/workout plan in the engine's
// wire shape. The plan itself is opaque to the trackers; quality of the
// generation is out of scope here.
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a new Generator instance.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

// Generate creates a weekly plan for the given request and profile.
func (g *Generator) Generate(ctx context.Context, userRequest string, p Profile) (*GeneratedPlan, llm.AgentMeta, error) {
	prompt := buildPrompt(userRequest, p)

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, prompt)
	meta := llm.AgentMeta{
		AgentName: "plan_generator",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return nil, meta, fmt.Errorf("failed to generate weekly plan from LLM: %w", err)
	}

	raw := []byte(stripFences(resp.Content))
	wp, err := plan.Parse(raw)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to parse weekly plan JSON: %w. Response: %s", err, resp.Content)
	}

	return &GeneratedPlan{Plan: wp, Raw: raw}, meta, nil
}

func buildPrompt(userRequest string, p Profile) string {
	restrictions := "none"
	if len(p.Restrictions) > 0 {
		restrictions = strings.Join(p.Restrictions, ", ")
	}

	return fmt.Sprintf(`
You are an expert fitness and nutrition coach. Create a 7-day plan (Monday to Sunday)
combining meals and workouts for the user below.

User Request: "%s"
Goal: %s
Daily Calorie Target: %d kcal
Training Days Per Week: %d
Dietary Restrictions: %s

Instructions:
1. Every day must list its meals in order, each with calories, protein and an ingredient list.
2. Ingredient entries start with a numeric quantity where possible, e.g. "100 g rice".
3. Training days also list exercises with sets, reps and rest in seconds.
4. Return the result strictly as a JSON object with this structure:
{
  "title": "Plan name",
  "days": [
    {
      "day": "Monday",
      "focus": "Push day",
      "items": [
        {"type": "breakfast", "name": "Oatmeal", "calories": 420, "protein": "18g", "ingredients": ["80 g oats", "250 ml milk"]},
        {"name": "Bench Press", "sets": 4, "reps": "8-10", "rest": 120, "notes": "controlled tempo"}
      ]
    }
  ]
}

Do not include any other text or formatting in your response.
`, userRequest, p.Goal, p.CalorieTarget, p.TrainingDays, restrictions)
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite the instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
