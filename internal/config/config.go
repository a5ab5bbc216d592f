package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultUnits mirrors the unit picker of the recipe form.
var DefaultUnits = []string{"g", "ml", "個", "本", "枚", "大さじ", "小さじ"}

// Config holds application configuration.
type Config struct {
	// Owner is the resolved identity all operations run as.
	// Sign-in is handled outside cookbox; this is the already-resolved id.
	Owner string `json:"owner"`

	// Units is the allowlist of ingredient units accepted when adding a recipe.
	// An empty list in the file keeps the defaults.
	Units []string `json:"units,omitempty"`

	// DefaultUnit is applied to ingredient rows that leave the unit blank.
	// When it is not in Units, the first allowed unit is used instead.
	DefaultUnit string `json:"default_unit"`

	// MaxIngredients caps the ingredient list of a new recipe.
	MaxIngredients int `json:"max_ingredients"`

	// QueryMaxChars caps the length (runes) of a search query.
	QueryMaxChars int `json:"query_max_chars"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// AllowedPaths are extra directories export and import may use besides
	// ~/.cookbox/exports. Relative entries are ignored.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths lifts the directory restriction on export and import.
	// Symlinks are still refused.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Owner:          "local",
		Units:          append([]string(nil), DefaultUnits...),
		DefaultUnit:    "g",
		MaxIngredients: 100,
		QueryMaxChars:  200,
		LogLevel:       "info",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.cookbox.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.cookbox) and project
// (.cookbox) directories. The project config is found by walking upward from
// startDir. Project values take precedence for scalars; disabled_tools are merged.
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .cookbox/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".cookbox", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars and for the unit list;
// disabled_tools and allowed_paths are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Owner = firstNonEmpty(overlay.Owner, base.Owner)
	result.DefaultUnit = firstNonEmpty(overlay.DefaultUnit, base.DefaultUnit)
	result.LogLevel = firstNonEmpty(overlay.LogLevel, base.LogLevel)

	result.MaxIngredients = overlay.MaxIngredients
	if result.MaxIngredients == 0 {
		result.MaxIngredients = base.MaxIngredients
	}

	result.QueryMaxChars = overlay.QueryMaxChars
	if result.QueryMaxChars == 0 {
		result.QueryMaxChars = base.QueryMaxChars
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Unit allowlist: overlay replaces base when set
	result.Units = mergeStringSlice(overlay.Units, nil)
	if result.Units == nil {
		result.Units = mergeStringSlice(base.Units, nil)
	}
	// The default unit must itself pass the allowlist, or blank-unit rows
	// would be rejected.
	if len(result.Units) > 0 && !result.AllowsUnit(result.DefaultUnit) {
		result.DefaultUnit = result.Units[0]
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)

	// Either layer can opt in; a repo config cannot opt back out of the global one.
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	return result
}

// AllowsUnit reports whether unit is in the configured allowlist.
// An empty allowlist accepts any unit.
func (c *Config) AllowsUnit(unit string) bool {
	if len(c.Units) == 0 {
		return true
	}
	for _, u := range c.Units {
		if u == unit {
			return true
		}
	}
	return false
}

func firstNonEmpty(a, b string) string {
	if s := strings.TrimSpace(a); s != "" {
		return s
	}
	return strings.TrimSpace(b)
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
