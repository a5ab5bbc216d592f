package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/db"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
	"github.com/stretchr/testify/require"
)

const testOwner = "u1"

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func intPtr(n int) *int {
	return &n
}

// fixedSource always returns the same index.
type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

// addRecipe stores a recipe for owner with one 1-unit row per ingredient name.
func addRecipe(t *testing.T, database *sql.DB, owner, name string, ingredients ...string) string {
	t.Helper()
	input := AddInput{
		Owner:        owner,
		Name:         name,
		Instructions: "Cook it.",
	}
	for _, ing := range ingredients {
		input.Ingredients = append(input.Ingredients, recipe.Ingredient{Name: ing, Amount: 1})
	}
	out, err := Add(context.Background(), database, config.DefaultConfig(), input)
	require.NoError(t, err)
	return out.ID
}

func TestRequireOwner(t *testing.T) {
	owner, err := requireOwner("  u1 ")
	if err != nil {
		t.Fatalf("requireOwner failed: %v", err)
	}
	if owner != "u1" {
		t.Errorf("owner = %q, want u1", owner)
	}

	_, err = requireOwner("   ")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestGenerateULID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := generateULID()
		if err != nil {
			t.Fatalf("generateULID failed: %v", err)
		}
		if len(id) != 26 {
			t.Fatalf("len(id) = %d, want 26", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
