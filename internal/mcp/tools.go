package mcp

import "github.com/mark3labs/mcp-go/mcp"

var addToolDef = mcp.NewTool("recipe_add",
	mcp.WithDescription("Store a new recipe. Ingredient rows with a blank name are dropped; a blank unit takes the configured default unit."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Recipe name")),
	mcp.WithNumber("prep_time", mcp.Description("Preparation time in minutes (default 0)"), mcp.Min(0)),
	mcp.WithNumber("cook_time", mcp.Description("Cooking time in minutes (default 0)"), mcp.Min(0)),
	mcp.WithNumber("servings", mcp.Description("Number of servings (default 1)"), mcp.Min(1)),
	mcp.WithArray("ingredients",
		mcp.Description("Ingredient list in display order"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":   map[string]any{"type": "string"},
				"amount": map[string]any{"type": "number", "minimum": 0},
				"unit":   map[string]any{"type": "string"},
			},
			"required": []string{"name"},
		}),
	),
	mcp.WithString("instructions", mcp.Required(), mcp.Description("Cooking instructions, one step per line (markdown allowed)")),
)

var getToolDef = mcp.NewTool("recipe_get",
	mcp.WithDescription("Fetch one recipe by ID."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Recipe ID")),
)

var listToolDef = mcp.NewTool("recipe_list",
	mcp.WithDescription("List recipe summaries, newest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Number of recipes to skip")),
)

var deleteToolDef = mcp.NewTool("recipe_delete",
	mcp.WithDescription("Permanently delete a recipe by ID."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Recipe ID")),
)

var searchToolDef = mcp.NewTool("recipe_search",
	mcp.WithDescription("Pick one random recipe that uses an ingredient. Matching is case-insensitive and partial: \"egg\" matches \"Eggplant\". "+
		"Returns {\"recipe\": ..., \"candidates\": n}, {\"empty\": true, \"query\": ...} when nothing matches, or {\"idle\": true} for a blank ingredient."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("ingredient", mcp.Required(), mcp.Description("Ingredient to search for")),
	mcp.WithNumber("seed", mcp.Description("Optional seed for a reproducible pick")),
)

var exportToolDef = mcp.NewTool("recipe_export",
	mcp.WithDescription("Back up all recipes to a JSONL file. The file must sit directly in ~/.cookbox/exports or a configured allowed path."),
	mcp.WithString("path", mcp.Description("Output .jsonl path (default ~/.cookbox/exports/<owner>-<time>.jsonl)")),
)

var importToolDef = mcp.NewTool("recipe_import",
	mcp.WithDescription("Restore recipes from a JSONL backup made by recipe_export."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Backup .jsonl path")),
	mcp.WithString("mode",
		mcp.Description("On id collision: error aborts everything (default), skip leaves the record out, rename assigns a new id"),
		mcp.Enum("error", "skip", "rename"),
	),
)
