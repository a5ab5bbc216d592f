package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/ops"
	"github.com/hpungsan/cookbox/internal/recipe"
	"github.com/hpungsan/cookbox/internal/selector"
)

// Handlers holds dependencies for MCP tool handlers.
// Every call runs as cfg.Owner.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
	log *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{db: db, cfg: cfg, log: logger}
}

// Request types for each tool

// AddRequest represents the arguments for recipe_add.
type AddRequest struct {
	Name         string              `json:"name"`
	PrepTime     *int                `json:"prep_time,omitempty"`
	CookTime     *int                `json:"cook_time,omitempty"`
	Servings     *int                `json:"servings,omitempty"`
	Ingredients  []recipe.Ingredient `json:"ingredients,omitempty"`
	Instructions string              `json:"instructions"`
}

// IDRequest represents the arguments for recipe_get and recipe_delete.
type IDRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for recipe_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// SearchRequest represents the arguments for recipe_search.
type SearchRequest struct {
	Ingredient string  `json:"ingredient"`
	Seed       *uint64 `json:"seed,omitempty"`
}

// ExportRequest represents the arguments for recipe_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for recipe_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// HandleAdd handles the recipe_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Add(ctx, h.db, h.cfg, ops.AddInput{
		Owner:        h.cfg.Owner,
		Name:         input.Name,
		PrepTime:     input.PrepTime,
		CookTime:     input.CookTime,
		Servings:     input.Servings,
		Ingredients:  input.Ingredients,
		Instructions: input.Instructions,
	})
	if err != nil {
		return h.fail("recipe_add", err), nil
	}

	return successResult(result)
}

// HandleGet handles the recipe_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.db, ops.GetInput{Owner: h.cfg.Owner, ID: input.ID})
	if err != nil {
		return h.fail("recipe_get", err), nil
	}

	return successResult(result)
}

// HandleList handles the recipe_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Owner:  h.cfg.Owner,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return h.fail("recipe_list", err), nil
	}

	return successResult(result)
}

// HandleDelete handles the recipe_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{Owner: h.cfg.Owner, ID: input.ID})
	if err != nil {
		return h.fail("recipe_delete", err), nil
	}

	return successResult(result)
}

// HandleSearch handles the recipe_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var src selector.RandomSource
	if input.Seed != nil {
		src = selector.Seeded(*input.Seed)
	}

	result, err := ops.Search(ctx, h.db, h.cfg, ops.SearchInput{
		Owner:      h.cfg.Owner,
		Ingredient: input.Ingredient,
		Rand:       src,
	})
	if err != nil {
		return h.fail("recipe_search", err), nil
	}

	return successResult(result)
}

// HandleExport handles the recipe_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{Owner: h.cfg.Owner, Path: input.Path})
	if err != nil {
		return h.fail("recipe_export", err), nil
	}
	h.log.Info("recipes exported", zap.String("path", result.Path), zap.Int("count", result.Count))

	return successResult(result)
}

// HandleImport handles the recipe_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
		Owner: h.cfg.Owner,
		Path:  input.Path,
		Mode:  ops.ImportMode(input.Mode),
	})
	if err != nil {
		return h.fail("recipe_import", err), nil
	}
	h.log.Info("recipes imported", zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))

	return successResult(result)
}

// fail logs server-side failures and converts err into a tool error result.
func (h *Handlers) fail(tool string, err error) *mcp.CallToolResult {
	if cErr := errors.As(err); cErr == nil || cErr.Status >= 500 {
		h.log.Error("tool call failed", zap.String("tool", tool), zap.Error(err))
	}
	return errorResult(err)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if cErr := errors.As(err); cErr != nil && cErr.Code != errors.ErrInternal {
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": cErr.Message,
			"status":  cErr.Status,
		}
		if cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		// Internal errors may carry SQL text or file paths
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result with JSON-serialized data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
