// Package selector picks one recipe matching an ingredient query.
//
// Select is a pure function of (query, recipes, random source): it performs no
// I/O, never blocks and does not mutate its input, so concurrent calls with
// different inputs never interfere.
package selector

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
)

// Status is the outcome of a search.
type Status string

const (
	// StatusIdle means no search was performed (blank query).
	StatusIdle Status = "idle"
	// StatusEmpty means the search ran and no recipe matched.
	StatusEmpty Status = "empty"
	// StatusFound means a recipe was selected.
	StatusFound Status = "found"
)

// Result is the outcome of Select. Exactly one of the three states holds.
type Result struct {
	Status Status

	// Query is the searched term as entered (trimmed), kept for the empty
	// state message. Blank when idle.
	Query string

	// Recipe is set only when Status is StatusFound.
	Recipe *recipe.Recipe

	// Candidates is the size of the matching set the recipe was drawn from.
	Candidates int
}

// Idle reports whether no search was performed.
func (r Result) Idle() bool { return r.Status == StatusIdle }

// Empty reports whether the search ran and matched nothing.
func (r Result) Empty() bool { return r.Status == StatusEmpty }

// Found reports whether a recipe was selected.
func (r Result) Found() bool { return r.Status == StatusFound }

// MarshalJSON encodes the result as one of
// {"recipe": ..., "candidates": n}, {"empty": true, "query": ...}, {"idle": true}.
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Status {
	case StatusFound:
		return json.Marshal(struct {
			Recipe     *recipe.Recipe `json:"recipe"`
			Candidates int            `json:"candidates"`
		}{r.Recipe, r.Candidates})
	case StatusEmpty:
		return json.Marshal(struct {
			Empty bool   `json:"empty"`
			Query string `json:"query"`
		}{true, r.Query})
	default:
		return json.Marshal(struct {
			Idle bool `json:"idle"`
		}{true})
	}
}

// Select returns one recipe whose ingredient list matches query.
//
// A blank query (after normalization) yields StatusIdle without looking at
// recipes. Otherwise every recipe is checked with recipe.Check; a malformed
// record rejects the whole call with a DATA_INTEGRITY error. Matching
// recipes are collected in input order and src picks one uniformly.
func Select(query string, recipes []recipe.Recipe, src RandomSource) (Result, error) {
	normalized := recipe.Normalize(query)
	if normalized == "" {
		return Result{Status: StatusIdle}, nil
	}

	for i := range recipes {
		if problems := recipe.Check(&recipes[i]); len(problems) > 0 {
			return Result{}, errors.NewDataIntegrity(recipes[i].ID, problems)
		}
	}

	candidates := Candidates(normalized, recipes)
	if len(candidates) == 0 {
		return Result{Status: StatusEmpty, Query: strings.TrimSpace(query)}, nil
	}

	if src == nil {
		src = DefaultSource()
	}
	idx := src.IntN(len(candidates))
	if idx < 0 || idx >= len(candidates) {
		return Result{}, errors.NewInternal(fmt.Errorf("random source returned index %d for %d candidates", idx, len(candidates)))
	}

	picked := candidates[idx].Clone()
	return Result{
		Status:     StatusFound,
		Query:      strings.TrimSpace(query),
		Recipe:     &picked,
		Candidates: len(candidates),
	}, nil
}

// Candidates returns the recipes matching an already-normalized query,
// preserving input order. The copies share ingredient slices with recipes.
func Candidates(normalizedQuery string, recipes []recipe.Recipe) []recipe.Recipe {
	if normalizedQuery == "" {
		return nil
	}
	var out []recipe.Recipe
	for i := range recipes {
		if recipes[i].Matches(normalizedQuery) {
			out = append(out, recipes[i])
		}
	}
	return out
}
