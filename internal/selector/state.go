package selector

import "github.com/hpungsan/cookbox/internal/recipe"

// State is the search screen state: Idle -> Searched(query) -> Found | Empty,
// back to Idle whenever the query is cleared. Transitions are pure and return
// a new value.
type State struct {
	Status Status
	Query  string
	Recipe *recipe.Recipe
}

// Idle returns the initial state.
func Idle() State {
	return State{Status: StatusIdle}
}

// Submit runs a search over recipes and returns the resulting state.
// On error the receiver is returned unchanged.
func (s State) Submit(query string, recipes []recipe.Recipe, src RandomSource) (State, error) {
	res, err := Select(query, recipes, src)
	if err != nil {
		return s, err
	}
	return FromResult(res), nil
}

// Change records an edit to the query box without searching. Clearing the
// box resets to Idle; any other edit keeps the displayed outcome.
func (s State) Change(query string) State {
	if recipe.Normalize(query) == "" {
		return Idle()
	}
	return s
}

// Clear resets to Idle.
func (s State) Clear() State {
	return Idle()
}

// FromResult converts a selection result into a state.
func FromResult(res Result) State {
	switch res.Status {
	case StatusFound:
		return State{Status: StatusFound, Query: res.Query, Recipe: res.Recipe}
	case StatusEmpty:
		return State{Status: StatusEmpty, Query: res.Query}
	default:
		return Idle()
	}
}
