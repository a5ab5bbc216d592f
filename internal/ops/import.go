package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/db"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/recipe"
)

// ImportMode controls what happens when a record's id is already stored.
type ImportMode string

const (
	ImportModeError  ImportMode = "error"  // any problem aborts the whole import
	ImportModeSkip   ImportMode = "skip"   // colliding and bad records are skipped
	ImportModeRename ImportMode = "rename" // colliding records get a new id
)

// maxImportLine bounds a single JSONL line; long instructions need more
// than bufio's 64 KiB default.
const maxImportLine = 4 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Owner string
	Path  string     // required
	Mode  ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type importLine struct {
	line   int
	record recipe.ExportRecord
}

// Import loads recipes from a JSONL backup file into owner's collection.
// Records keep their id, name and timestamps but always land under owner,
// whatever owner_id the file carries.
//
// All inserts share one transaction. In error mode the first problem rolls
// it back and the report lists what went wrong with Imported = 0.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	owner, err := requireOwner(input.Owner)
	if err != nil {
		return nil, err
	}
	mode := input.Mode
	if mode == "" {
		mode = ImportModeError
	}
	if mode != ImportModeError && mode != ImportModeSkip && mode != ImportModeRename {
		return nil, errors.NewInvalidRequest("mode must be one of: error, skip, rename")
	}

	if err := validateBackupPath(input.Path, pathRead, cfg); err != nil {
		return nil, err
	}
	file, err := openNoFollow(input.Path, os.O_RDONLY, 0)
	if err != nil {
		return nil, wrapFileError("failed to open import file", err)
	}
	defer file.Close()

	lines, out, err := parseBackup(file)
	if err != nil {
		return nil, err
	}
	if mode == ImportModeError && len(out.Errors) > 0 {
		return out, nil
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, l := range lines {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}

		r := l.record.ToRecipe(owner)
		if problems := importProblems(cfg, r); len(problems) > 0 {
			out.reject(l.line, r.ID, "INVALID_RECORD", strings.Join(problems, "; "))
			if mode == ImportModeError {
				return out.aborted(), nil
			}
			continue
		}

		exists, err := db.Exists(ctx, tx, r.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			switch mode {
			case ImportModeRename:
				if r.ID, err = generateULID(); err != nil {
					return nil, errors.NewInternal(err)
				}
			default:
				out.reject(l.line, r.ID, "ID_COLLISION", fmt.Sprintf("recipe with id %q already exists", r.ID))
				if mode == ImportModeError {
					return out.aborted(), nil
				}
				continue
			}
		}

		if err := db.Insert(ctx, tx, r); err != nil {
			return nil, err
		}
		out.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// parseBackup reads every line of a backup file. Lines that are not JSON or
// have no id are reported in the returned output; header lines are checked
// for a supported schema version and dropped.
func parseBackup(r io.Reader) ([]importLine, *ImportOutput, error) {
	out := &ImportOutput{Errors: []ImportError{}}
	var lines []importLine

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)

	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var header recipe.ExportHeader
		var rec recipe.ExportRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			out.reject(n, "", "PARSE_ERROR", fmt.Sprintf("invalid JSON: %v", err))
			continue
		}
		if rec.CookboxExport {
			if err := json.Unmarshal([]byte(text), &header); err != nil || header.SchemaVersion != recipe.ExportSchemaVersion {
				return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported backup schema version %q", header.SchemaVersion))
			}
			continue
		}
		if strings.TrimSpace(rec.ID) == "" {
			out.reject(n, "", "INVALID_RECORD", "missing id field")
			continue
		}
		lines = append(lines, importLine{line: n, record: rec})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("failed to read backup file: %v", err))
	}
	return lines, out, nil
}

// importProblems applies the structural checks and the ingredient cap. The
// unit allowlist is not applied so backups survive config changes.
func importProblems(cfg *config.Config, r *recipe.Recipe) []string {
	r.Name = strings.TrimSpace(r.Name)
	problems := recipe.Check(r)
	if strings.TrimSpace(r.Instructions) == "" {
		problems = append(problems, "instructions is required")
	}
	if cfg != nil && cfg.MaxIngredients > 0 && len(r.Ingredients) > cfg.MaxIngredients {
		problems = append(problems, fmt.Sprintf("too many ingredients: %d (max %d)", len(r.Ingredients), cfg.MaxIngredients))
	}
	return problems
}

func (o *ImportOutput) reject(line int, id, code, msg string) {
	o.Errors = append(o.Errors, ImportError{Line: line, ID: id, Code: code, Message: msg})
	o.Skipped++
}

// aborted reports an error-mode import that was rolled back.
func (o *ImportOutput) aborted() *ImportOutput {
	o.Imported = 0
	return o
}
