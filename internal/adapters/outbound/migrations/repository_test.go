package migrations_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/schemactl/internal/adapters/outbound/migrations"
	"github.com/openkraft/schemactl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../../../testdata/blog/migrations"

func TestRepository_ListFixture(t *testing.T) {
	list, err := migrations.New(fixtureDir).List()
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "20260101000000", list[0].Version)
	assert.Equal(t, "20260102000000", list[1].Version)
	assert.Equal(t, []string{
		"CREATE TABLE blog_domain_model_author (id INTEGER NOT NULL PRIMARY KEY, name VARCHAR(255) NOT NULL)",
	}, list[0].Up)
	assert.Equal(t, []string{"DROP TABLE blog_domain_model_author"}, list[0].Down)
	assert.Len(t, list[1].Up, 2)
	assert.Len(t, list[1].Down, 2)
	assert.Len(t, list[0].Resource.Hash, 40)
}

func TestRepository_ListMissingDir(t *testing.T) {
	list, err := migrations.New(filepath.Join(t.TempDir(), "none")).List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepository_ListIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Version1.sql"), []byte("-- +up"), 0644))

	list, err := migrations.New(dir).List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepository_CreateAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	repo := migrations.New(dir)

	path, err := repo.Create("20261018120000", "generated by test\ncommit abc", []string{
		"CREATE TABLE a (id INTEGER)",
		"CREATE INDEX idx_a ON a (id)",
	}, []string{"DROP TABLE a"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Version20261018120000.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- generated by test\n-- commit abc\n")

	m, err := repo.Get("20261018120000")
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX idx_a ON a (id)"}, m.Up)
	assert.Equal(t, []string{"DROP TABLE a"}, m.Down)
	assert.Equal(t, domain.NewResource("Version20261018120000.sql", data).Hash, m.Resource.Hash)
}

func TestRepository_CreateNeverOverwrites(t *testing.T) {
	repo := migrations.New(t.TempDir())
	_, err := repo.Create("20261018120000", "", nil, nil)
	require.NoError(t, err)
	_, err = repo.Create("20261018120000", "", nil, nil)
	assert.Error(t, err)
}

func TestRepository_GetUnknown(t *testing.T) {
	_, err := migrations.New(t.TempDir()).Get("20000101000000")
	assert.True(t, errors.Is(err, domain.ErrUnknownVersion))
}

func TestParse_MultiLineStatements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Version20261018120000.sql")
	require.NoError(t, os.WriteFile(path, []byte(`-- header
-- +UP
CREATE TABLE a (
  id INTEGER
);

-- a comment
INSERT INTO a (id) VALUES (1);
-- +down
DROP TABLE a
`), 0644))

	m, err := migrations.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE a (\nid INTEGER\n)", "INSERT INTO a (id) VALUES (1)"}, m.Up)
	assert.Equal(t, []string{"DROP TABLE a"}, m.Down)
}

func TestFormat_EmptySections(t *testing.T) {
	out := migrations.Format("20261018120000", "", nil, nil)
	assert.Equal(t, "-- schemactl migration Version20261018120000\n-- +up\n-- +down\n", out)
}
