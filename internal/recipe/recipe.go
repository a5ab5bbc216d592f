// Package recipe defines the stored recipe shape and the text normalization
// used to compare ingredient names.
package recipe

// Defaults applied at the store boundary when a numeric column is NULL.
const (
	DefaultPrepTime = 0
	DefaultCookTime = 0
	DefaultServings = 1
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	// Name is free text as entered ("Egg", "卵", "olive oil")
	Name string `json:"name"`

	// Amount must be finite and non-negative
	Amount float64 `json:"amount"`

	// Unit is a free-text token ("g", "ml", "個")
	Unit string `json:"unit"`
}

// Recipe is a stored recipe. Every recipe belongs to exactly one owner.
type Recipe struct {
	// ID is opaque and unique per owner (ULID for recipes created here)
	ID string `json:"id"`

	// OwnerID is the owning user's resolved identity
	OwnerID string `json:"owner_id"`

	Name string `json:"name"`

	// PrepTime and CookTime are minutes
	PrepTime int `json:"prep_time"`
	CookTime int `json:"cook_time"`

	Servings int `json:"servings"`

	// Ingredients are kept in display order; order does not affect matching
	Ingredients []Ingredient `json:"ingredients"`

	// Instructions is multi-line free text
	Instructions string `json:"instructions"`

	// CreatedAt is the Unix timestamp when the recipe was stored
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last write
	UpdatedAt int64 `json:"updated_at"`
}

// Summary is a recipe without its ingredient list and instructions.
// Used for list views.
type Summary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PrepTime        int    `json:"prep_time"`
	CookTime        int    `json:"cook_time"`
	Servings        int    `json:"servings"`
	IngredientCount int    `json:"ingredient_count"`
	CreatedAt       int64  `json:"created_at"`
}

// ToSummary strips the ingredient list and instructions.
func (r *Recipe) ToSummary() Summary {
	return Summary{
		ID:              r.ID,
		Name:            r.Name,
		PrepTime:        r.PrepTime,
		CookTime:        r.CookTime,
		Servings:        r.Servings,
		IngredientCount: len(r.Ingredients),
		CreatedAt:       r.CreatedAt,
	}
}

// TotalTime returns prep plus cook minutes.
func (r *Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// Clone returns a copy that shares no slices with r.
func (r *Recipe) Clone() Recipe {
	c := *r
	if r.Ingredients != nil {
		c.Ingredients = make([]Ingredient, len(r.Ingredients))
		copy(c.Ingredients, r.Ingredients)
	}
	return c
}
