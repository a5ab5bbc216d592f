package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/cookbox/internal/db"
	"github.com/hpungsan/cookbox/internal/recipe"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	Owner string
	ID    string
}

// Get retrieves one of the owner's recipes by ID.
func Get(ctx context.Context, database *sql.DB, input GetInput) (*recipe.Recipe, error) {
	owner, err := requireOwner(input.Owner)
	if err != nil {
		return nil, err
	}
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	return db.GetByID(ctx, database, owner, id)
}
