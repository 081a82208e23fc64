package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_create_sessions.up.sql",
		"000001_create_sessions.down.sql",
		"000012_add_index.up.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000099_dir"), 0o755))

	assert.Equal(t, int64(12), findLatestMigrationVersion(dir))
	assert.Zero(t, findLatestMigrationVersion(filepath.Join(dir, "missing")))
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	assert.Equal(t, int64(3), findLatestMigrationVersion("../../migrations"))
}

func TestRunMigrationsNeedsURL(t *testing.T) {
	assert.Error(t, RunMigrations("", "migrations", nil))
}
