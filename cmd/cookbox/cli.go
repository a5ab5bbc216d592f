package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/hpungsan/cookbox/internal/logging"
	"github.com/hpungsan/cookbox/internal/ops"
	"github.com/hpungsan/cookbox/internal/recipe"
	"github.com/hpungsan/cookbox/internal/selector"
	"github.com/hpungsan/cookbox/internal/web"
)

// appEnv carries the dependencies shared by all commands.
// log is built in the app's Before hook once --verbose is known.
type appEnv struct {
	db  *sql.DB
	cfg *config.Config
	log *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "cookbox",
		Usage:   "Recipe box with ingredient search",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Usage: "Run as this owner (overrides config)"},
			&cli.BoolFlag{Name: "verbose", Usage: "Debug logging"},
		},
		Before: func(c *cli.Context) error {
			if owner := strings.TrimSpace(c.String("owner")); owner != "" {
				env.cfg.Owner = owner
			}
			logger, err := logging.New(env.cfg.LogLevel, c.Bool("verbose"))
			if err != nil {
				return err
			}
			env.log = logger
			return nil
		},
		Commands: []*cli.Command{
			addCmd(env),
			showCmd(env),
			listCmd(env),
			deleteCmd(env),
			searchCmd(env),
			exportCmd(env),
			importCmd(env),
			serveCmd(env),
		},
		// Ingredient names may contain commas
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a recipe (reads instructions from stdin unless --instructions is given)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Recipe name", Required: true},
			&cli.IntFlag{Name: "prep", Usage: "Preparation time in minutes (default 0)"},
			&cli.IntFlag{Name: "cook", Usage: "Cooking time in minutes (default 0)"},
			&cli.IntFlag{Name: "servings", Aliases: []string{"s"}, Usage: "Number of servings (default 1)"},
			&cli.StringSliceFlag{Name: "ingredient", Aliases: []string{"i"}, Usage: "Ingredient as name:amount[:unit], repeatable"},
			&cli.StringFlag{Name: "instructions", Usage: "Instructions text"},
		},
		Action: func(c *cli.Context) error {
			input := ops.AddInput{
				Owner: env.cfg.Owner,
				Name:  c.String("name"),
			}
			if c.IsSet("prep") {
				input.PrepTime = intPtr(c.Int("prep"))
			}
			if c.IsSet("cook") {
				input.CookTime = intPtr(c.Int("cook"))
			}
			if c.IsSet("servings") {
				input.Servings = intPtr(c.Int("servings"))
			}

			for _, s := range c.StringSlice("ingredient") {
				ing, err := parseIngredient(s)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Ingredients = append(input.Ingredients, ing)
			}

			instructions, err := readInstructions(c)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			input.Instructions = instructions

			output, err := ops.Add(c.Context, env.db, env.cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a recipe by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Get(c.Context, env.db, ops.GetInput{
				Owner: env.cfg.Owner,
				ID:    c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recipes, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Skip N results"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, env.db, ops.ListInput{
				Owner:  env.cfg.Owner,
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a recipe",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, env.db, ops.DeleteInput{
				Owner: env.cfg.Owner,
				ID:    c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Pick a random recipe that uses an ingredient",
		ArgsUsage: "<ingredient>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "seed", Usage: "Seed for a reproducible pick"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SearchInput{
				Owner:      env.cfg.Owner,
				Ingredient: strings.Join(c.Args().Slice(), " "),
			}
			if c.IsSet("seed") {
				input.Rand = selector.Seeded(c.Uint64("seed"))
			}

			output, err := ops.Search(c.Context, env.db, env.cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Back up recipes to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Output file (default ~/.cookbox/exports/<owner>-<time>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, env.db, env.cfg, ops.ExportInput{
				Owner: env.cfg.Owner,
				Path:  c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			env.log.Info("recipes exported", zap.String("path", output.Path), zap.Int("count", output.Count))

			return outputJSON(c.App.Writer, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Restore recipes from a JSONL backup",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: string(ops.ImportModeError), Usage: "On id collision: error, skip or rename"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, env.db, env.cfg, ops.ImportInput{
				Owner: env.cfg.Owner,
				Path:  c.Args().First(),
				Mode:  ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			env.log.Info("recipes imported", zap.Int("imported", output.Imported), zap.Int("skipped", output.Skipped))

			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(env.db, env.cfg, env.log, nil, Version, c.String("bind"), c.Int("port"))
			defer func() { _ = env.log.Sync() }()
			if err := web.Run(srv, env.log); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr := errors.As(err); cErr != nil {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readInstructions returns --instructions if set, otherwise piped input.
// A non-stdin App.Reader (tests) is always read.
func readInstructions(c *cli.Context) (string, error) {
	if c.IsSet("instructions") {
		return c.String("instructions"), nil
	}
	r := c.App.Reader
	if r == nil || r == os.Stdin {
		if !stdinHasData() {
			return "", nil
		}
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// parseIngredient parses "name:amount[:unit]". The name may itself contain
// colons; amount and unit are taken from the right.
func parseIngredient(s string) (recipe.Ingredient, error) {
	parts := strings.Split(s, ":")
	n := len(parts)
	if n >= 3 {
		if amount, err := strconv.ParseFloat(strings.TrimSpace(parts[n-2]), 64); err == nil {
			return recipe.Ingredient{
				Name:   strings.TrimSpace(strings.Join(parts[:n-2], ":")),
				Amount: amount,
				Unit:   strings.TrimSpace(parts[n-1]),
			}, nil
		}
	}
	if n >= 2 {
		if amount, err := strconv.ParseFloat(strings.TrimSpace(parts[n-1]), 64); err == nil {
			return recipe.Ingredient{
				Name:   strings.TrimSpace(strings.Join(parts[:n-1], ":")),
				Amount: amount,
			}, nil
		}
	}
	return recipe.Ingredient{}, fmt.Errorf("invalid ingredient %q: want name:amount[:unit]", s)
}

func intPtr(n int) *int {
	return &n
}
