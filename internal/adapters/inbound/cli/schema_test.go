package cli_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Passes(t *testing.T) {
	dir := copyFixture(t, "blog")
	out, err := run(t, "--path", dir, "--plain", "validate")
	require.NoError(t, err)
	assert.Equal(t, "Mapping validation results: PASSED, no errors found. :o)\n", out)
}

func TestValidateCommand_Fails(t *testing.T) {
	dir := copyFixture(t, "invalid")
	out, err := run(t, "--path", dir, "--plain", "validate")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Mapping validation results: FAILED!", lines[0])
	assert.Equal(t, "  ClassA", lines[1])
	assert.Contains(t, out, "\n  ClassB\n")
	assert.Less(t, strings.Index(out, "ClassA"), strings.Index(out, "ClassB"))
}

func TestRoutedCommands_SkippedWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"validate":        "Mapping validation has been SKIPPED, the driver and path backend options are not set.\n",
		"create":          "Database schema creation has been SKIPPED, the driver and path backend options are not set.\n",
		"updateandclean":  "Database schema update has been SKIPPED, the driver and path backend options are not set.\n",
		"compileproxies":  "Proxy compilation has been SKIPPED, the driver and path backend options are not set.\n",
		"migrationstatus": "Migration status not available, the driver and path backend options are not set.\n",
		"migrate":         "Migration not possible, the driver and path backend options are not set.\n",
		"migrationdiff":   "Migration generation has been SKIPPED, the driver and path backend options are not set.\n",
	}
	for name, want := range tests {
		out, err := run(t, "--path", dir, "--plain", name)
		require.NoError(t, err, name)
		assert.Equal(t, want, out, name)
	}
	assert.NoFileExists(t, filepath.Join(dir, "var", "app.db"))
}

func TestMigrateCommand_UpStatusAndDown(t *testing.T) {
	dir := copyFixture(t, "blog")

	out, err := run(t, "--path", dir, "--plain", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "++ migrated 20260101000000")
	assert.Contains(t, out, "++ migrated 20260102000000")
	assert.FileExists(t, filepath.Join(dir, "var", "blog.db"))

	out, err = run(t, "--path", dir, "--plain", "migrationstatus")
	require.NoError(t, err)
	assert.Contains(t, out, ">> Current Version:       20260102000000")
	assert.Contains(t, out, ">> New Migrations:        0")

	out, err = run(t, "--path", dir, "--plain", "migrate", "--version", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "-- reverted 20260102000000")
	assert.Contains(t, out, "-- reverted 20260101000000")
}

func TestMigrationExecuteCommand(t *testing.T) {
	dir := copyFixture(t, "blog")

	out, err := run(t, "--path", dir, "--plain", "migrationexecute", "--version", "20260101000000")
	require.NoError(t, err)
	assert.Equal(t, "  ++ migrated 20260101000000 (1 statements)\n", out)

	out, err = run(t, "--path", dir, "--plain", "migrationexecute", "--version", "20260101000000", "--direction", "down")
	require.NoError(t, err)
	assert.Equal(t, "  -- reverted 20260101000000 (1 statements)\n", out)

	_, err = run(t, "--path", dir, "migrationexecute", "--version", "20260101000000", "--direction", "sideways")
	assert.ErrorContains(t, err, "unknown direction")

	_, err = run(t, "--path", dir, "migrationexecute")
	assert.ErrorContains(t, err, "version is required")
}

func TestCreateAndDiffCommands(t *testing.T) {
	dir := copyFixture(t, "blog")

	out, err := run(t, "--path", dir, "--plain", "create")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = run(t, "--path", dir, "--plain", "migrationdiff")
	require.NoError(t, err)
	assert.Equal(t, "No changes detected in your mapping information.\n", out)

	_, err = run(t, "--path", dir, "create")
	assert.ErrorContains(t, err, "already exists")
}

func TestMigrationGenerateCommand(t *testing.T) {
	dir := copyFixture(t, "blog")
	out, err := run(t, "--path", dir, "--plain", "migrationgenerate")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `Generated new migration file to "`+filepath.Join(dir, "migrations", "Version")), out)
}

func TestCompileProxiesCommand(t *testing.T) {
	dir := copyFixture(t, "blog")
	_, err := run(t, "--path", dir, "compileproxies")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "var", "proxies", "blog_domain_model_post.json"))
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available commands:\n  validate, compileproxies\n  create, update, updateandclean\n")
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, "dropall")
	assert.Error(t, err)
}

func TestMappingSchemaCommand(t *testing.T) {
	out, err := run(t, "mapping", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"$defs"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "schemactl dev (none)\n"+
		"  drivers:     pdo_sqlite, sqlite, sqlite3\n"+
		"  migrations:  Version<YYYYMMDDhhmmss>.sql, tracked in schema_migrations\n", out)

	out, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "schemactl dev (none)\n", out)
}
