package recipe

// ExportSchemaVersion is written to the header line of every backup file.
const ExportSchemaVersion = "1"

// ExportHeader is the first line of a JSONL backup file.
type ExportHeader struct {
	CookboxExport bool   `json:"_cookbox_export"`
	SchemaVersion string `json:"schema_version"`
	Owner         string `json:"owner"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportRecord is one line of a JSONL backup file. Header detection uses
// CookboxExport, so a record line and a header line decode into the same type.
type ExportRecord struct {
	CookboxExport bool `json:"_cookbox_export,omitempty"`

	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id"` // ignored on import, the importer owns the copy
	Name         string       `json:"name"`
	PrepTime     *int         `json:"prep_time"`
	CookTime     *int         `json:"cook_time"`
	Servings     *int         `json:"servings"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions"`
	CreatedAt    int64        `json:"created_at"`
	UpdatedAt    int64        `json:"updated_at"`
}

// ToRecipe converts a record into a recipe owned by owner.
// Missing numbers take the same defaults the store applies to NULL columns.
func (e *ExportRecord) ToRecipe(owner string) *Recipe {
	r := &Recipe{
		ID:           e.ID,
		OwnerID:      owner,
		Name:         e.Name,
		PrepTime:     DefaultPrepTime,
		CookTime:     DefaultCookTime,
		Servings:     DefaultServings,
		Ingredients:  e.Ingredients,
		Instructions: e.Instructions,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.PrepTime != nil {
		r.PrepTime = *e.PrepTime
	}
	if e.CookTime != nil {
		r.CookTime = *e.CookTime
	}
	if e.Servings != nil {
		r.Servings = *e.Servings
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	return r
}

// ToExportRecord converts a stored recipe for writing to a backup file.
func ToExportRecord(r *Recipe) *ExportRecord {
	prep, cook, servings := r.PrepTime, r.CookTime, r.Servings
	return &ExportRecord{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Name:         r.Name,
		PrepTime:     &prep,
		CookTime:     &cook,
		Servings:     &servings,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
