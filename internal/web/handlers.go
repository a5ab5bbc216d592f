package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/ops"
	"github.com/hpungsan/cookbox/internal/recipe"
	"github.com/hpungsan/cookbox/internal/selector"
)

// formIngredientRows is the number of ingredient rows a fresh form shows.
const formIngredientRows = 8

// Handlers contains HTTP route handlers for the web UI.
// All requests run as cfg.Owner.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
	log      *zap.Logger

	// rand must be safe for concurrent use; nil uses the default source.
	rand selector.RandomSource
}

// RecipeForm holds the raw values of the new recipe form so it can be
// redisplayed after a validation error.
type RecipeForm struct {
	Name         string
	PrepTime     string
	CookTime     string
	Servings     string
	Instructions string
	Ingredients  []IngredientRow
}

// IngredientRow is one ingredient line of the form.
type IngredientRow struct {
	Name   string
	Amount string
	Unit   string
}

// HandleList handles GET /recipes: list the owner's recipes.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		Owner:  h.cfg.Owner,
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData:   h.renderer.page("Recipes", "recipes"),
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleNew handles GET /recipes/new, the empty recipe form.
func (h *Handlers) HandleNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, h.blankForm(), nil)
}

// HandleCreate handles POST /recipes and creates a recipe from the form.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	form := parseRecipeForm(r)
	input, err := form.toInput(h.cfg.Owner)
	if err == nil {
		var out *ops.AddOutput
		out, err = ops.Add(r.Context(), h.db, h.cfg, input)
		if err == nil {
			h.log.Info("recipe added", zap.String("id", out.ID), zap.Int("ingredients", len(out.Recipe.Ingredients)))
			location := "/recipes/" + out.ID
			switch {
			case wantsJSON(r):
				w.Header().Set("Location", location)
				renderJSON(w, http.StatusCreated, out)
			case isHTMX(r):
				w.Header().Set("HX-Redirect", location)
				w.WriteHeader(http.StatusOK)
			default:
				http.Redirect(w, r, location, http.StatusSeeOther)
			}
			return
		}
	}

	// Validation failures go back to the form with the entered values
	cErr := errors.As(err)
	if cErr == nil || cErr.Status >= 500 || wantsJSON(r) {
		h.renderer.renderError(w, r, err)
		return
	}
	problems := []string{cErr.Message}
	if list, ok := cErr.Details["problems"].([]string); ok {
		problems = list
	}
	h.renderForm(w, r, cErr.Status, form.padded(h.cfg.DefaultUnit), problems)
}

// HandleDetail handles GET /recipes/{id} to view a single recipe.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("recipe ID is required"))
		return
	}

	rec, err := ops.Get(r.Context(), h.db, ops.GetInput{Owner: h.cfg.Owner, ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, rec)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData:   h.renderer.page(rec.Name, "recipes"),
		RecipeView: h.renderer.view(rec),
	})
}

// HandleDelete handles DELETE /recipes/{id} and POST /recipes/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("recipe ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{Owner: h.cfg.Owner, ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.log.Info("recipe deleted", zap.String("id", result.ID))

	// HTMX request: redirect via HX-Redirect header
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/recipes")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/recipes", http.StatusSeeOther)
}

// HandleSearch handles GET /search and picks a random recipe containing an ingredient.
// A blank ingredient shows the idle page.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("ingredient")

	result, err := ops.Search(r.Context(), h.db, h.cfg, ops.SearchInput{
		Owner:      h.cfg.Owner,
		Ingredient: query,
		Rand:       h.rand,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data := SearchPageData{
		PageData: h.renderer.page("Search", "search"),
		Query:    strings.TrimSpace(query),
		State:    selector.FromResult(*result),
	}
	if data.State.Recipe != nil {
		card := h.renderer.view(data.State.Recipe)
		data.Card = &card
	}

	// If htmx targets #search-result, render only the result fragment
	if r.Header.Get("HX-Target") == "search-result" {
		h.renderer.renderBlock(w, http.StatusOK, "search", "search-result", data)
		return
	}

	h.renderer.renderPage(w, r, "search", data)
}

func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, status int, form RecipeForm, problems []string) {
	h.renderer.renderPageStatus(w, r, status, "form", FormPageData{
		PageData: h.renderer.page("New recipe", "new"),
		Form:     form,
		Units:    h.cfg.Units,
		Problems: problems,
	})
}

// blankForm returns an empty form with the default unit preselected.
func (h *Handlers) blankForm() RecipeForm {
	return RecipeForm{}.padded(h.cfg.DefaultUnit)
}

// padded appends blank ingredient rows up to formIngredientRows.
func (f RecipeForm) padded(defaultUnit string) RecipeForm {
	for len(f.Ingredients) < formIngredientRows {
		f.Ingredients = append(f.Ingredients, IngredientRow{Unit: defaultUnit})
	}
	return f
}

// parseRecipeForm reads the submitted form. Ingredient rows arrive as
// parallel ingredient_name / ingredient_amount / ingredient_unit fields.
func parseRecipeForm(r *http.Request) RecipeForm {
	form := RecipeForm{
		Name:         r.PostFormValue("name"),
		PrepTime:     strings.TrimSpace(r.PostFormValue("prep_time")),
		CookTime:     strings.TrimSpace(r.PostFormValue("cook_time")),
		Servings:     strings.TrimSpace(r.PostFormValue("servings")),
		Instructions: r.PostFormValue("instructions"),
	}

	names := r.PostForm["ingredient_name"]
	amounts := r.PostForm["ingredient_amount"]
	units := r.PostForm["ingredient_unit"]
	for i, name := range names {
		row := IngredientRow{Name: name}
		if i < len(amounts) {
			row.Amount = strings.TrimSpace(amounts[i])
		}
		if i < len(units) {
			row.Unit = units[i]
		}
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		form.Ingredients = append(form.Ingredients, row)
	}
	return form
}

// toInput converts form values into an ops.AddInput. Blank numbers take the
// recipe defaults; a blank amount is zero.
func (f RecipeForm) toInput(owner string) (ops.AddInput, error) {
	input := ops.AddInput{
		Owner:        owner,
		Name:         f.Name,
		Instructions: f.Instructions,
	}

	var err error
	if input.PrepTime, err = optionalInt("prep_time", f.PrepTime); err != nil {
		return input, err
	}
	if input.CookTime, err = optionalInt("cook_time", f.CookTime); err != nil {
		return input, err
	}
	if input.Servings, err = optionalInt("servings", f.Servings); err != nil {
		return input, err
	}

	for i, row := range f.Ingredients {
		amount := 0.0
		if row.Amount != "" {
			amount, err = strconv.ParseFloat(row.Amount, 64)
			if err != nil {
				return input, errors.NewInvalidRequest(fmt.Sprintf("ingredients[%d]: amount must be a number", i))
			}
		}
		input.Ingredients = append(input.Ingredients, recipe.Ingredient{
			Name:   row.Name,
			Amount: amount,
			Unit:   row.Unit,
		})
	}
	return input, nil
}

func optionalInt(field, s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.NewInvalidRequest(field + " must be a whole number")
	}
	return &n, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
