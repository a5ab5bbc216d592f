package selector

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
)

// fixedIndex is a RandomSource that always returns the same index.
type fixedIndex int

func (f fixedIndex) IntN(int) int { return int(f) }

func makeRecipe(id, name string, ingredients ...string) recipe.Recipe {
	r := recipe.Recipe{
		ID:           id,
		OwnerID:      "alice",
		Name:         name,
		Servings:     1,
		Instructions: "cook",
	}
	for _, ing := range ingredients {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Name: ing, Amount: 1, Unit: "g"})
	}
	return r
}

func omeletteAndSalad() []recipe.Recipe {
	return []recipe.Recipe{
		makeRecipe("r1", "Omelette", "Egg"),
		makeRecipe("r2", "Salad", "Lettuce"),
	}
}

func TestSelect_SingleMatch(t *testing.T) {
	res, err := Select("egg", omeletteAndSalad(), DefaultSource())
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Omelette", res.Recipe.Name)
	assert.Equal(t, 1, res.Candidates)
}

func TestSelect_NoMatch(t *testing.T) {
	res, err := Select("cheese", omeletteAndSalad(), DefaultSource())
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Nil(t, res.Recipe)
	assert.Equal(t, "cheese", res.Query)
}

func TestSelect_SubstringMatchesEggplant(t *testing.T) {
	recipes := []recipe.Recipe{makeRecipe("r1", "Moussaka", "Eggplant")}

	res, err := Select("egg", recipes, DefaultSource())
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Moussaka", res.Recipe.Name)
}

func TestSelect_EmptyList(t *testing.T) {
	res, err := Select("egg", nil, DefaultSource())
	require.NoError(t, err)
	assert.True(t, res.Empty())

	res, err = Select("egg", []recipe.Recipe{}, DefaultSource())
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestSelect_StubIndexPicksSecondCandidate(t *testing.T) {
	recipes := []recipe.Recipe{
		makeRecipe("r1", "Omelette", "Egg"),
		makeRecipe("r2", "Salad", "Lettuce"),
		makeRecipe("r3", "Custard", "Milk", "egg yolk"),
	}

	res, err := Select("egg", recipes, fixedIndex(1))
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Custard", res.Recipe.Name)
	assert.Equal(t, 2, res.Candidates)
}

func TestSelect_StubIndexIsExact(t *testing.T) {
	recipes := []recipe.Recipe{
		makeRecipe("a", "A", "rice"),
		makeRecipe("b", "B", "brown rice"),
		makeRecipe("c", "C", "Rice noodles"),
		makeRecipe("d", "D", "RICE vinegar"),
	}
	for k := range recipes {
		res, err := Select("rice", recipes, fixedIndex(k))
		require.NoError(t, err)
		assert.Equal(t, recipes[k].ID, res.Recipe.ID)
	}
}

func TestSelect_BlankQueryIsIdle(t *testing.T) {
	for _, q := range []string{"", " ", "\t\n", "　"} {
		res, err := Select(q, omeletteAndSalad(), DefaultSource())
		require.NoError(t, err)
		assert.True(t, res.Idle(), "query %q should be idle", q)
		assert.False(t, res.Empty(), "idle must be distinct from empty")
		assert.Nil(t, res.Recipe)
	}
}

func TestSelect_BlankQuerySkipsIntegrityCheck(t *testing.T) {
	broken := []recipe.Recipe{{ID: "bad"}}
	res, err := Select("  ", broken, DefaultSource())
	require.NoError(t, err)
	assert.True(t, res.Idle())
}

func TestSelect_QueryNormalized(t *testing.T) {
	res, err := Select("  EGG  ", omeletteAndSalad(), DefaultSource())
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Omelette", res.Recipe.Name)
	assert.Equal(t, "EGG", res.Query, "query kept as entered, trimmed")
}

func TestSelect_JapaneseIngredient(t *testing.T) {
	recipes := []recipe.Recipe{
		makeRecipe("r1", "卵焼き", "卵", "砂糖"),
		makeRecipe("r2", "味噌汁", "豆腐", "味噌"),
	}
	res, err := Select("卵", recipes, DefaultSource())
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "卵焼き", res.Recipe.Name)
}

func TestSelect_CherokeeQueryMatchesEitherCase(t *testing.T) {
	recipes := []recipe.Recipe{
		makeRecipe("r1", "ᏣᎳᎩ stew", "ꭰꮃ"),
		makeRecipe("r2", "Toast", "Bread"),
	}
	for _, query := range []string{"Ꭰ", "ꭰ", " ᎠᎳ ", "ꭰꮃ"} {
		res, err := Select(query, recipes, DefaultSource())
		require.NoError(t, err)
		require.True(t, res.Found(), "query %q", query)
		assert.Equal(t, "r1", res.Recipe.ID)
	}
}

func TestSelect_MalformedRecordRejectsWholeCall(t *testing.T) {
	recipes := omeletteAndSalad()
	bad := makeRecipe("r3", "Broken", "Egg")
	bad.Ingredients[0].Amount = math.NaN()
	recipes = append(recipes, bad)

	_, err := Select("egg", recipes, DefaultSource())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataIntegrity))

	cErr := errors.As(err)
	require.NotNil(t, cErr)
	assert.Equal(t, "r3", cErr.Details["id"])
}

func TestSelect_MalformedNonMatchingRecordStillRejects(t *testing.T) {
	recipes := omeletteAndSalad()
	recipes = append(recipes, recipe.Recipe{ID: "r9", OwnerID: "alice", Name: "x", Servings: 0})

	_, err := Select("egg", recipes, DefaultSource())
	assert.True(t, errors.Is(err, errors.ErrDataIntegrity))
}

func TestSelect_OutOfRangeSourceIsInternalError(t *testing.T) {
	_, err := Select("egg", omeletteAndSalad(), fixedIndex(5))
	assert.True(t, errors.Is(err, errors.ErrInternal))

	_, err = Select("egg", omeletteAndSalad(), fixedIndex(-1))
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestSelect_NilSourceUsesDefault(t *testing.T) {
	res, err := Select("egg", omeletteAndSalad(), nil)
	require.NoError(t, err)
	assert.True(t, res.Found())
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	recipes := omeletteAndSalad()

	res, err := Select("egg", recipes, DefaultSource())
	require.NoError(t, err)
	res.Recipe.Name = "Changed"
	res.Recipe.Ingredients[0].Name = "Changed"

	assert.Equal(t, "Omelette", recipes[0].Name)
	assert.Equal(t, "Egg", recipes[0].Ingredients[0].Name)
}

func TestSelect_AlwaysDrawsFromMatchingSubset(t *testing.T) {
	gen := rand.New(rand.NewPCG(7, 11))
	vocab := []string{"Egg", "Eggplant", "Milk", "Butter", "Flour", "Rice", "Soy sauce", "Leek", "Tofu", "Miso"}
	queries := []string{"egg", "milk", "rice", "so", "e", "tofu", "cheese", " LEEK "}

	for iter := 0; iter < 200; iter++ {
		n := gen.IntN(8)
		recipes := make([]recipe.Recipe, n)
		for i := range recipes {
			var ings []string
			for j := gen.IntN(4); j > 0; j-- {
				ings = append(ings, vocab[gen.IntN(len(vocab))])
			}
			recipes[i] = makeRecipe(fmt.Sprintf("r%d", i), fmt.Sprintf("R%d", i), ings...)
		}

		for _, q := range queries {
			res, err := Select(q, recipes, Seeded(uint64(iter)))
			require.NoError(t, err)

			nq := recipe.Normalize(q)
			anyMatch := false
			for i := range recipes {
				if recipes[i].Matches(nq) {
					anyMatch = true
				}
			}

			if !anyMatch {
				assert.True(t, res.Empty(), "query %q matched nothing, want empty", q)
				continue
			}
			require.True(t, res.Found(), "query %q should find a recipe", q)
			assert.True(t, res.Recipe.Matches(nq), "selected recipe %s does not match %q", res.Recipe.ID, q)
		}
	}
}

func TestSelect_UniformOverCandidates(t *testing.T) {
	recipes := []recipe.Recipe{
		makeRecipe("a", "A", "egg"),
		makeRecipe("b", "B", "Egg white"),
		makeRecipe("x", "X", "milk"),
		makeRecipe("c", "C", "quail egg"),
	}

	const draws = 30000
	counts := map[string]int{}
	src := Seeded(42)
	for range draws {
		res, err := Select("egg", recipes, src)
		require.NoError(t, err)
		counts[res.Recipe.ID]++
	}

	assert.Zero(t, counts["x"], "non-matching recipe must never be selected")
	expected := draws / 3
	for _, id := range []string{"a", "b", "c"} {
		assert.InDelta(t, expected, counts[id], float64(expected)*0.05, "candidate %s chosen %d times", id, counts[id])
	}
}

func TestSelect_ConcurrentCallsDoNotInterfere(t *testing.T) {
	recipes := omeletteAndSalad()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := "egg"
			if i%2 == 1 {
				q = "lettuce"
			}
			res, err := Select(q, recipes, DefaultSource())
			assert.NoError(t, err)
			if i%2 == 1 {
				assert.Equal(t, "Salad", res.Recipe.Name)
			} else {
				assert.Equal(t, "Omelette", res.Recipe.Name)
			}
		}(i)
	}
	wg.Wait()
}

func TestCandidates_PreservesOrder(t *testing.T) {
	recipes := []recipe.Recipe{
		makeRecipe("1", "One", "egg"),
		makeRecipe("2", "Two", "milk"),
		makeRecipe("3", "Three", "egg"),
	}
	got := Candidates("egg", recipes)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	assert.Nil(t, Candidates("", recipes))
}

func TestResult_MarshalJSON(t *testing.T) {
	found, err := Select("egg", omeletteAndSalad(), fixedIndex(0))
	require.NoError(t, err)
	b, err := json.Marshal(found)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	recipeObj, ok := decoded["recipe"].(map[string]any)
	require.True(t, ok, "found result should carry a recipe object: %s", b)
	assert.Equal(t, "Omelette", recipeObj["name"])
	assert.EqualValues(t, 1, decoded["candidates"])

	b, err = json.Marshal(Result{Status: StatusEmpty, Query: "cheese"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"empty": true, "query": "cheese"}`, string(b))

	b, err = json.Marshal(Result{Status: StatusIdle})
	require.NoError(t, err)
	assert.JSONEq(t, `{"idle": true}`, string(b))
}
