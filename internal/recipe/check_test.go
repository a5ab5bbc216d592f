package recipe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecipe() Recipe {
	return Recipe{
		ID:       "01HX",
		OwnerID:  "alice",
		Name:     "Omelette",
		PrepTime: 5,
		CookTime: 10,
		Servings: 1,
		Ingredients: []Ingredient{
			{Name: "Egg", Amount: 2, Unit: "個"},
			{Name: "Butter", Amount: 10, Unit: "g"},
		},
		Instructions: "Beat eggs.\nCook in butter.",
	}
}

func TestCheck_Valid(t *testing.T) {
	r := validRecipe()
	assert.Empty(t, Check(&r))
}

func TestCheck_ZeroIngredientsIsValid(t *testing.T) {
	r := validRecipe()
	r.Ingredients = nil
	assert.Empty(t, Check(&r))
}

func TestCheck_Problems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Recipe)
		want   string
	}{
		{"missing id", func(r *Recipe) { r.ID = "" }, "id is required"},
		{"missing owner", func(r *Recipe) { r.OwnerID = " " }, "owner_id is required"},
		{"blank name", func(r *Recipe) { r.Name = "\t" }, "name is required"},
		{"negative prep", func(r *Recipe) { r.PrepTime = -1 }, "prep_time must not be negative"},
		{"negative cook", func(r *Recipe) { r.CookTime = -5 }, "cook_time must not be negative"},
		{"zero servings", func(r *Recipe) { r.Servings = 0 }, "servings must be at least 1"},
		{"blank ingredient name", func(r *Recipe) { r.Ingredients[1].Name = "" }, "ingredients[1]: name is required"},
		{"negative amount", func(r *Recipe) { r.Ingredients[0].Amount = -0.5 }, "ingredients[0]: amount must not be negative"},
		{"NaN amount", func(r *Recipe) { r.Ingredients[0].Amount = math.NaN() }, "ingredients[0]: amount must be a finite number"},
		{"infinite amount", func(r *Recipe) { r.Ingredients[1].Amount = math.Inf(1) }, "ingredients[1]: amount must be a finite number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(&r)
			problems := Check(&r)
			require.Len(t, problems, 1)
			assert.Equal(t, tt.want, problems[0])
		})
	}
}

func TestCheck_CollectsAllProblems(t *testing.T) {
	r := Recipe{}
	problems := Check(&r)
	assert.Equal(t, []string{
		"id is required",
		"owner_id is required",
		"name is required",
		"servings must be at least 1",
	}, problems)
}

func TestRecipe_ToSummary(t *testing.T) {
	r := validRecipe()
	r.CreatedAt = 1700000000

	s := r.ToSummary()
	assert.Equal(t, "01HX", s.ID)
	assert.Equal(t, "Omelette", s.Name)
	assert.Equal(t, 2, s.IngredientCount)
	assert.Equal(t, int64(1700000000), s.CreatedAt)
	assert.Equal(t, 15, r.TotalTime())
}

func TestRecipe_Clone(t *testing.T) {
	r := validRecipe()
	c := r.Clone()
	c.Ingredients[0].Name = "Duck egg"

	assert.Equal(t, "Egg", r.Ingredients[0].Name, "clone must not share the ingredient slice")
}
