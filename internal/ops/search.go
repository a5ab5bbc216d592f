package ops

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/db"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
	"github.com/hpungsan/cookbox/internal/selector"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Owner      string
	Ingredient string

	// Rand picks among the matches. nil uses selector.DefaultSource().
	Rand selector.RandomSource
}

// Search picks one of the owner's recipes containing the ingredient.
// A blank ingredient returns an idle result without reading the store.
func Search(ctx context.Context, database *sql.DB, cfg *config.Config, input SearchInput) (*selector.Result, error) {
	normalized := recipe.Normalize(input.Ingredient)
	if normalized == "" {
		return &selector.Result{Status: selector.StatusIdle}, nil
	}

	if cfg.QueryMaxChars > 0 {
		if n := utf8.RuneCountInString(normalized); n > cfg.QueryMaxChars {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("ingredient must be at most %d characters (got %d)", cfg.QueryMaxChars, n))
		}
	}

	owner, err := requireOwner(input.Owner)
	if err != nil {
		return nil, err
	}

	recipes, err := db.ListByOwner(ctx, database, owner)
	if err != nil {
		return nil, err
	}

	// The snapshot must hold only the caller's recipes.
	for i := range recipes {
		if recipes[i].OwnerID != owner {
			return nil, errors.NewDataIntegrity(recipes[i].ID, []string{"owner_id does not match the requesting user"})
		}
	}

	result, err := selector.Select(input.Ingredient, recipes, input.Rand)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
