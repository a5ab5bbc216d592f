package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/db"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Owner        string
	Name         string // required
	PrepTime     *int   // default: 0
	CookTime     *int   // default: 0
	Servings     *int   // default: 1
	Ingredients  []recipe.Ingredient
	Instructions string // required
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	ID     string        `json:"id"`
	Recipe recipe.Recipe `json:"recipe"`
}

// Add validates and stores a new recipe.
// Ingredient rows with a blank name are dropped and blank units take
// cfg.DefaultUnit, matching what the recipe form submits.
func Add(ctx context.Context, database *sql.DB, cfg *config.Config, input AddInput) (*AddOutput, error) {
	owner, err := requireOwner(input.Owner)
	if err != nil {
		return nil, err
	}

	var problems []string
	if strings.TrimSpace(input.Instructions) == "" {
		problems = append(problems, "instructions is required")
	}

	ingredients := make([]recipe.Ingredient, 0, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		unit := strings.TrimSpace(ing.Unit)
		if unit == "" {
			unit = cfg.DefaultUnit
		}
		if !cfg.AllowsUnit(unit) {
			problems = append(problems, fmt.Sprintf("ingredients[%d]: unit %q is not allowed", len(ingredients), unit))
		}
		ingredients = append(ingredients, recipe.Ingredient{Name: name, Amount: ing.Amount, Unit: unit})
	}

	if cfg.MaxIngredients > 0 && len(ingredients) > cfg.MaxIngredients {
		return nil, errors.NewRecipeTooLarge(cfg.MaxIngredients, len(ingredients))
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	r := &recipe.Recipe{
		ID:           id,
		OwnerID:      owner,
		Name:         strings.TrimSpace(input.Name),
		PrepTime:     intOr(input.PrepTime, recipe.DefaultPrepTime),
		CookTime:     intOr(input.CookTime, recipe.DefaultCookTime),
		Servings:     intOr(input.Servings, recipe.DefaultServings),
		Ingredients:  ingredients,
		Instructions: input.Instructions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	problems = append(recipe.Check(r), problems...)
	if len(problems) > 0 {
		return nil, errors.NewInvalidRecipe(problems)
	}

	if err := db.Insert(ctx, database, r); err != nil {
		return nil, err
	}

	return &AddOutput{ID: id, Recipe: *r}, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
