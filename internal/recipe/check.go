package recipe

import (
	"fmt"
	"math"
	"strings"
)

// Check validates the structural shape of a recipe and returns the list of
// problems found (nil if the recipe is well formed).
//
// Authoring reports problems as an invalid recipe; the selector treats any
// problem in a stored recipe as a data integrity failure.
func Check(r *Recipe) []string {
	var problems []string

	if strings.TrimSpace(r.ID) == "" {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		problems = append(problems, "owner_id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is required")
	}
	if r.PrepTime < 0 {
		problems = append(problems, "prep_time must not be negative")
	}
	if r.CookTime < 0 {
		problems = append(problems, "cook_time must not be negative")
	}
	if r.Servings < 1 {
		problems = append(problems, "servings must be at least 1")
	}

	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			problems = append(problems, fmt.Sprintf("ingredients[%d]: name is required", i))
		}
		switch {
		case math.IsNaN(ing.Amount) || math.IsInf(ing.Amount, 0):
			problems = append(problems, fmt.Sprintf("ingredients[%d]: amount must be a finite number", i))
		case ing.Amount < 0:
			problems = append(problems, fmt.Sprintf("ingredients[%d]: amount must not be negative", i))
		}
	}

	return problems
}
