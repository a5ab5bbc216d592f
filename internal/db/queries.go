package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
)

const recipeColumns = `id, owner_id, name, prep_time, cook_time, servings,
	ingredients_json, instructions, created_at, updated_at`

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert stores a new recipe.
func Insert(ctx context.Context, db Execer, r *recipe.Recipe) error {
	ingredientsJSON, err := encodeIngredients(r.Ingredients)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.ExecContext(ctx, query,
		r.ID, r.OwnerID, r.Name, r.PrepTime, r.CookTime, r.Servings,
		ingredientsJSON, r.Instructions, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetByID retrieves one of owner's recipes.
// A recipe that exists under another owner is reported as not found.
func GetByID(ctx context.Context, db *sql.DB, owner, id string) (*recipe.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE id = ? AND owner_id = ?
	`

	r, err := scanRecipe(db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound(id)
		}
		return nil, wrapScanError(err)
	}

	return r, nil
}

// ListByOwner returns every recipe belonging to owner, newest first.
// This is the read-only snapshot handed to the selector.
func ListByOwner(ctx context.Context, db *sql.DB, owner string) ([]recipe.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// ListPage returns one page of owner's recipes, newest first, plus the total
// count for pagination.
func ListPage(ctx context.Context, db *sql.DB, owner string, limit, offset int) ([]recipe.Recipe, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE owner_id = ?`, owner).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	recipes, err := scanRecipes(rows)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// Exists reports whether a recipe with id is stored under any owner.
// Recipe ids are unique across the whole store.
func Exists(ctx context.Context, db Querier, id string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE id = ?`, id).Scan(&n); err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// Delete permanently removes one of owner's recipes.
func Delete(ctx context.Context, db *sql.DB, owner, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecipe scans a single row into a Recipe.
// NULL prep_time/cook_time/servings are replaced with the recipe defaults here,
// so nothing past the store sees a missing number.
func scanRecipe(row rowScanner) (*recipe.Recipe, error) {
	var (
		r               recipe.Recipe
		prepTime        sql.NullInt64
		cookTime        sql.NullInt64
		servings        sql.NullInt64
		ingredientsJSON string
	)

	err := row.Scan(
		&r.ID, &r.OwnerID, &r.Name, &prepTime, &cookTime, &servings,
		&ingredientsJSON, &r.Instructions, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.PrepTime = intOrDefault(prepTime, recipe.DefaultPrepTime)
	r.CookTime = intOrDefault(cookTime, recipe.DefaultCookTime)
	r.Servings = intOrDefault(servings, recipe.DefaultServings)

	ingredients, err := decodeIngredients(ingredientsJSON)
	if err != nil {
		return nil, errors.NewDataIntegrity(r.ID, []string{"ingredients: " + err.Error()})
	}
	r.Ingredients = ingredients

	return &r, nil
}

func scanRecipes(rows *sql.Rows) ([]recipe.Recipe, error) {
	var recipes []recipe.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, wrapScanError(err)
		}
		recipes = append(recipes, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return recipes, nil
}

// wrapScanError keeps CookboxErrors (data integrity) and wraps the rest.
func wrapScanError(err error) error {
	if cErr := errors.As(err); cErr != nil {
		return cErr
	}
	return errors.NewInternal(err)
}

func intOrDefault(n sql.NullInt64, def int) int {
	if !n.Valid {
		return def
	}
	return int(n.Int64)
}

// encodeIngredients serializes the ingredient list; nil is stored as [].
func encodeIngredients(ingredients []recipe.Ingredient) (string, error) {
	if ingredients == nil {
		ingredients = []recipe.Ingredient{}
	}
	data, err := json.Marshal(ingredients)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ingredientKeys are the keys every stored ingredient object carries.
var ingredientKeys = []string{"name", "amount", "unit"}

// decodeIngredients parses ingredients_json. Anything other than a JSON array
// of ingredient objects is rejected, as are objects with a missing, null or
// unknown key.
func decodeIngredients(s string) ([]recipe.Ingredient, error) {
	trimmed := bytes.TrimSpace([]byte(s))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("not a JSON array")
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}

	ingredients := make([]recipe.Ingredient, 0, len(raw))
	for i, item := range raw {
		ing, err := decodeIngredient(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

func decodeIngredient(item json.RawMessage) (recipe.Ingredient, error) {
	var ing recipe.Ingredient
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return ing, fmt.Errorf("not an object")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(item, &keys); err != nil {
		return ing, err
	}
	for _, k := range ingredientKeys {
		v, ok := keys[k]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return ing, fmt.Errorf("missing %q", k)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(item))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ing); err != nil {
		return ing, err
	}
	return ing, nil
}
