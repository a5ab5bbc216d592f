package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/db"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Owner string
	Path  string // optional, default: ~/.cookbox/exports/<owner>-<timestamp>.jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes all of owner's recipes to a JSONL backup file: one header
// line, then one recipe per line, newest first.
//
// The file is written to a temp name and renamed into place, so a failed
// export leaves an existing file at Path untouched.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	owner, err := requireOwner(input.Owner)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	path := input.Path
	if path == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%s.jsonl", sanitizeFilename(owner), now.Format("2006-01-02T150405")))
	}
	if err := validateBackupPath(path, pathWrite, cfg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	recipes, err := db.ListByOwner(ctx, database, owner)
	if err != nil {
		return nil, err
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(suffix) + ".tmp"

	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return nil, wrapFileError("failed to create export file", err)
	}
	done := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !done {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	header := recipe.ExportHeader{
		CookboxExport: true,
		SchemaVersion: recipe.ExportSchemaVersion,
		Owner:         owner,
		ExportedAt:    now.Unix(),
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}
	for i := range recipes {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("export")
		}
		if err := enc.Encode(recipe.ToExportRecord(&recipes[i])); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would replace a symlink planted since validation
	if isSymlink(path) {
		return nil, errors.NewInvalidRequest("path must not be a symlink")
	}
	// On Windows this fails when path exists; the old file is kept.
	if err := os.Rename(tempPath, path); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	done = true
	return &ExportOutput{Path: path, Count: len(recipes), ExportedAt: now.Unix()}, nil
}

// wrapFileError keeps CookboxErrors from openNoFollow and wraps the rest.
func wrapFileError(msg string, err error) error {
	if cErr := errors.As(err); cErr != nil {
		return cErr
	}
	return errors.NewInternal(fmt.Errorf("%s: %w", msg, err))
}
