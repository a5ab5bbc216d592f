package ops

import (
	"context"
	"strings"
	"testing"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Found(t *testing.T) {
	database := openTestDB(t)
	id := addRecipe(t, database, testOwner, "Omelette", "Egg", "Milk")
	addRecipe(t, database, testOwner, "Salad", "Lettuce", "Tomato")

	result, err := Search(context.Background(), database, config.DefaultConfig(), SearchInput{
		Owner:      testOwner,
		Ingredient: "  EGG ",
		Rand:       fixedSource(0),
	})
	require.NoError(t, err)
	require.True(t, result.Found())
	assert.Equal(t, id, result.Recipe.ID)
	assert.Equal(t, 1, result.Candidates)
}

func TestSearch_SubstringAcrossCandidates(t *testing.T) {
	database := openTestDB(t)
	addRecipe(t, database, testOwner, "Omelette", "Egg")
	addRecipe(t, database, testOwner, "Eggplant stew", "Eggplant")
	addRecipe(t, database, testOwner, "Salad", "Lettuce")

	result, err := Search(context.Background(), database, config.DefaultConfig(), SearchInput{
		Owner:      testOwner,
		Ingredient: "egg",
		Rand:       selector.Seeded(7),
	})
	require.NoError(t, err)
	require.True(t, result.Found())
	assert.Equal(t, 2, result.Candidates)
	assert.Contains(t, []string{"Omelette", "Eggplant stew"}, result.Recipe.Name)
}

func TestSearch_Empty(t *testing.T) {
	database := openTestDB(t)
	addRecipe(t, database, testOwner, "Salad", "Lettuce")

	result, err := Search(context.Background(), database, config.DefaultConfig(), SearchInput{
		Owner:      testOwner,
		Ingredient: " Chicken ",
	})
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Equal(t, "Chicken", result.Query)
}

func TestSearch_OnlyOwnRecipes(t *testing.T) {
	database := openTestDB(t)
	addRecipe(t, database, "someone-else", "Omelette", "Egg")

	result, err := Search(context.Background(), database, config.DefaultConfig(), SearchInput{
		Owner:      testOwner,
		Ingredient: "egg",
	})
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestSearch_BlankIsIdleWithoutStore(t *testing.T) {
	// nil database: any store access would panic
	result, err := Search(context.Background(), nil, config.DefaultConfig(), SearchInput{
		Owner:      testOwner,
		Ingredient: " \t ",
	})
	require.NoError(t, err)
	assert.True(t, result.Idle())
}

func TestSearch_QueryTooLong(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.QueryMaxChars = 5

	_, err := Search(context.Background(), nil, cfg, SearchInput{
		Owner:      testOwner,
		Ingredient: strings.Repeat("卵", 6),
	})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSearch_MalformedRecordRejectsCall(t *testing.T) {
	database := openTestDB(t)
	addRecipe(t, database, testOwner, "Omelette", "Egg")

	_, err := database.Exec(`
		INSERT INTO recipes (id, owner_id, name, prep_time, cook_time, servings,
			ingredients_json, instructions, created_at, updated_at)
		VALUES ('bad', ?, 'Broken', 1, 1, -3, '[]', 'x', 1, 1)`, testOwner)
	require.NoError(t, err)

	_, err = Search(context.Background(), database, config.DefaultConfig(), SearchInput{
		Owner:      testOwner,
		Ingredient: "egg",
	})
	assert.True(t, errors.Is(err, errors.ErrDataIntegrity))
}

func TestSearch_RequiresOwner(t *testing.T) {
	database := openTestDB(t)

	_, err := Search(context.Background(), database, config.DefaultConfig(), SearchInput{Ingredient: "egg"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
