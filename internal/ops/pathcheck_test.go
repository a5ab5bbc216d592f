package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/cookbox/internal/config"
	"github.com/hpungsan/cookbox/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backupConfig allows backups directly in a fresh temp dir.
func backupConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	// macOS temp dirs sit behind a symlink
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{resolved}
	return cfg, resolved
}

func TestValidateBackupPath_Rejections(t *testing.T) {
	cfg, dir := backupConfig(t)

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"parent traversal", "../backup.jsonl"},
		{"mid-path traversal", dir + "/../backup.jsonl"},
		{"no extension", filepath.Join(dir, "backup")},
		{"wrong extension", filepath.Join(dir, "backup.json")},
		{"outside allowed dirs", "/etc/backup.jsonl"},
		{"nested subdirectory", filepath.Join(dir, "nested", "backup.jsonl")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateBackupPath(tc.path, pathWrite, cfg)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestValidateBackupPath_Allowed(t *testing.T) {
	cfg, dir := backupConfig(t)
	assert.NoError(t, validateBackupPath(filepath.Join(dir, "backup.jsonl"), pathWrite, cfg))
}

func TestValidateBackupPath_ReadMissingFile(t *testing.T) {
	cfg, dir := backupConfig(t)
	err := validateBackupPath(filepath.Join(dir, "missing.jsonl"), pathRead, cfg)
	assert.True(t, errors.Is(err, errors.ErrFileNotFound), "got %v", err)
}

func TestValidateBackupPath_SymlinkRefused(t *testing.T) {
	cfg, dir := backupConfig(t)
	target := filepath.Join(dir, "real.jsonl")
	require.NoError(t, os.WriteFile(target, []byte("{}\n"), 0600))
	link := filepath.Join(dir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	err := validateBackupPath(link, pathRead, cfg)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	cfg.AllowUnsafePaths = true
	err = validateBackupPath(link, pathRead, cfg)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "unsafe mode still refuses symlinks, got %v", err)
}

func TestValidateBackupPath_UnsafeSkipsDirectoryCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	path := filepath.Join(t.TempDir(), "nested", "backup.jsonl")
	assert.NoError(t, validateBackupPath(path, pathWrite, cfg))
}

func TestValidateBackupPath_DefaultExportsDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := DefaultExportsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cookbox", "exports"), dir)
	assert.NoError(t, validateBackupPath(filepath.Join(dir, "b.jsonl"), pathWrite, config.DefaultConfig()))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"u1":          "u1",
		"../../etc":   "etc",
		"a/b\\c":      "a-b-c",
		"user@x.com":  "user@x-com",
		"":            "recipes",
		"---":         "recipes",
		"tab\there":   "tabhere",
		"google:1234": "google-1234",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), "sanitizeFilename(%q)", in)
	}
}
