package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/cookbox/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Owner string
	ID    string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete permanently removes one of the owner's recipes.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	owner, err := requireOwner(input.Owner)
	if err != nil {
		return nil, err
	}
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	if err := db.Delete(ctx, database, owner, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      id,
	}, nil
}
