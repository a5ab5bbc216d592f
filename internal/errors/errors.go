package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a Cookbox error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"        // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrRecipeTooLarge ErrorCode = "RECIPE_TOO_LARGE" // 413
	ErrInvalidRecipe  ErrorCode = "INVALID_RECIPE"   // 422
	ErrDataIntegrity  ErrorCode = "DATA_INTEGRITY"   // 500
	ErrInternal       ErrorCode = "INTERNAL"         // 500
	ErrCancelled      ErrorCode = "CANCELLED"        // 499
)

// CookboxError represents a structured error with code, status, and details.
type CookboxError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CookboxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CookboxError {
	return &CookboxError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a recipe cannot be found.
func NewNotFound(id string) *CookboxError {
	return &CookboxError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("recipe not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *CookboxError {
	return &CookboxError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates a 499 error when a long-running operation's context ends.
func NewCancelled(op string) *CookboxError {
	return &CookboxError{
		Code:    ErrCancelled,
		Status:  499,
		Message: op + " cancelled",
	}
}

// NewRecipeTooLarge creates a 413 error when a recipe has too many ingredients.
func NewRecipeTooLarge(max, actual int) *CookboxError {
	return &CookboxError{
		Code:    ErrRecipeTooLarge,
		Status:  413,
		Message: fmt.Sprintf("recipe has too many ingredients: %d (max %d)", actual, max),
		Details: map[string]any{"max_ingredients": max, "actual_ingredients": actual},
	}
}

// NewInvalidRecipe creates a 422 error listing authoring validation problems.
func NewInvalidRecipe(problems []string) *CookboxError {
	return &CookboxError{
		Code:    ErrInvalidRecipe,
		Status:  422,
		Message: "invalid recipe: " + strings.Join(problems, "; "),
		Details: map[string]any{"problems": problems},
	}
}

// NewDataIntegrity creates a 500 error for a stored recipe that fails shape
// checks. The whole operation is rejected; the record is never skipped.
func NewDataIntegrity(id string, problems []string) *CookboxError {
	return &CookboxError{
		Code:    ErrDataIntegrity,
		Status:  500,
		Message: fmt.Sprintf("stored recipe %q is malformed: %s", id, strings.Join(problems, "; ")),
		Details: map[string]any{"id": id, "problems": problems},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CookboxError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CookboxError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err (or anything it wraps) is a CookboxError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CookboxError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// As returns the CookboxError in err's chain, or nil.
func As(err error) *CookboxError {
	var cErr *CookboxError
	if stderrors.As(err, &cErr) {
		return cErr
	}
	return nil
}
