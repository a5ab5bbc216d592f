package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
	"github.com/stretchr/testify/require"
)

// TestFullWorkflow exercises the complete recipe lifecycle:
// add → get → list → search → delete → search (empty) → get (not found)
func TestFullWorkflow(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()

	// 1. Add
	addOut, err := Add(ctx, database, cfg, AddInput{
		Owner:    testOwner,
		Name:     "卵焼き",
		PrepTime: intPtr(5),
		CookTime: intPtr(5),
		Ingredients: []recipe.Ingredient{
			{Name: "卵", Amount: 3, Unit: "個"},
			{Name: "砂糖", Amount: 1, Unit: "大さじ"},
		},
		Instructions: "混ぜる\n焼く",
	})
	require.NoError(t, err)
	id := addOut.ID

	// 2. Get
	got, err := Get(ctx, database, GetInput{Owner: testOwner, ID: id})
	require.NoError(t, err)
	require.Equal(t, "卵焼き", got.Name)
	require.Equal(t, 10, got.TotalTime())

	// 3. List
	listOut, err := List(ctx, database, ListInput{Owner: testOwner})
	require.NoError(t, err)
	require.Len(t, listOut.Items, 1)
	require.Equal(t, id, listOut.Items[0].ID)

	// 4. Search
	result, err := Search(ctx, database, cfg, SearchInput{Owner: testOwner, Ingredient: "卵"})
	require.NoError(t, err)
	require.True(t, result.Found())
	require.Equal(t, id, result.Recipe.ID)

	// 5. Delete
	_, err = Delete(ctx, database, DeleteInput{Owner: testOwner, ID: id})
	require.NoError(t, err)

	// 6. Search finds nothing
	result, err = Search(ctx, database, cfg, SearchInput{Owner: testOwner, Ingredient: "卵"})
	require.NoError(t, err)
	require.True(t, result.Empty())
	require.Equal(t, "卵", result.Query)

	// 7. Get - 404
	_, err = Get(ctx, database, GetInput{Owner: testOwner, ID: id})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
