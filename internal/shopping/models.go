package shopping

import "time"

// ShoppingList is the aggregated list for the remaining days of a plan.
type ShoppingList struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	PlanID    int64     `json:"plan_id"`
	FromDay   int       `json:"from_day"`
	Items     []string  `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}
