package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/cookbox/internal/db"
	"github.com/hpungsan/cookbox/internal/recipe"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Owner  string
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []recipe.Summary `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sort       string           `json:"sort"`
}

// List retrieves recipe summaries for an owner with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	owner, err := requireOwner(input.Owner)
	if err != nil {
		return nil, err
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(input.Offset, 0)

	recipes, total, err := db.ListPage(ctx, database, owner, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	items := make([]recipe.Summary, 0, len(recipes))
	for i := range recipes {
		items = append(items, recipes[i].ToSummary())
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
