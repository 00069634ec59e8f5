package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openkraft/schemactl/internal/domain"
	"github.com/openkraft/schemactl/internal/domain/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blogMapping() domain.Mapping {
	return domain.Mapping{Classes: []domain.ClassMapping{
		{
			Name: `Blog\Domain\Model\Author`,
			Fields: []domain.FieldMapping{
				{Name: "id", Type: domain.FieldInteger, ID: true},
				{Name: "emailAddress", Type: domain.FieldString, Unique: true},
			},
		},
		{
			Name: `Blog\Domain\Model\Post`,
			Fields: []domain.FieldMapping{
				{Name: "id", Type: domain.FieldInteger, ID: true},
				{Name: "title", Type: domain.FieldString},
				{Name: "publishedAt", Type: domain.FieldDatetime, Nullable: true},
			},
			Relations: []domain.Relation{
				{Name: "author", Target: `Blog\Domain\Model\Author`, Type: domain.ManyToOne},
			},
		},
	}}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		class string
		table string
		want  string
	}{
		{`Blog\Domain\Model\Post`, "", "blog_domain_model_post"},
		{"Shop.OrderLine", "", "shop_order_line"},
		{"HTTPLog", "", "http_log"},
		{"Post", "posts", "posts"},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.TableName(domain.ClassMapping{Name: tt.class, Table: tt.table}))
		})
	}
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "published_at", schema.ColumnName(domain.FieldMapping{Name: "publishedAt"}))
	assert.Equal(t, "pub", schema.ColumnName(domain.FieldMapping{Name: "publishedAt", Column: "pub"}))
	assert.Equal(t, "main_author_id", schema.JoinColumnName(domain.Relation{Name: "mainAuthor"}))
	assert.Equal(t, "user_name", schema.Snake("user_name"))
}

func TestSQLType(t *testing.T) {
	for _, ft := range domain.ValidFieldTypes {
		assert.NotEmpty(t, schema.SQLType(ft), "type %s", ft)
	}
	assert.Empty(t, schema.SQLType("money"))
}

func TestValidate_ValidMapping(t *testing.T) {
	errs := schema.Validate(blogMapping())
	assert.Equal(t, 0, errs.Len())
}

func TestValidate_ReportsPerClassInOrder(t *testing.T) {
	m := domain.Mapping{Classes: []domain.ClassMapping{
		{Name: "B", Fields: []domain.FieldMapping{{Name: "title", Type: "money"}}},
		{Name: "A", Fields: []domain.FieldMapping{{Name: "id", Type: domain.FieldInteger, ID: true}}},
		{Name: "C", Fields: []domain.FieldMapping{{Name: "id", Type: domain.FieldInteger, ID: true}},
			Relations: []domain.Relation{{Name: "owner", Target: "Missing"}}},
	}}

	errs := schema.Validate(m)
	require.Equal(t, 2, errs.Len())

	first := errs.Oldest()
	assert.Equal(t, "B", first.Key)
	assert.Equal(t, []string{
		`field "title" has unknown type "money"`,
		"no identifier field is mapped",
	}, first.Value)

	second := first.Next()
	assert.Equal(t, "C", second.Key)
	assert.Equal(t, []string{`relation "owner" targets unknown class Missing`}, second.Value)
}

func TestValidate_Duplicates(t *testing.T) {
	id := domain.FieldMapping{Name: "id", Type: domain.FieldInteger, ID: true}
	m := domain.Mapping{Classes: []domain.ClassMapping{
		{Name: "Post", Table: "post", Fields: []domain.FieldMapping{id, {Name: "title", Type: domain.FieldString}, {Name: "title", Type: domain.FieldText}}},
		{Name: "Other", Table: "POST", Fields: []domain.FieldMapping{id}},
		{Name: "Post", Table: "post2", Fields: []domain.FieldMapping{id}},
	}}

	errs := schema.Validate(m)
	post, ok := errs.Get("Post")
	require.True(t, ok)
	assert.Contains(t, post, `column "title" is mapped more than once`)
	assert.Contains(t, post, "class is mapped more than once")

	other, ok := errs.Get("Other")
	require.True(t, ok)
	assert.Contains(t, other, `table "POST" is already mapped by Post`)
}

func TestValidate_StructuralErrors(t *testing.T) {
	m := domain.Mapping{Classes: []domain.ClassMapping{
		{Fields: []domain.FieldMapping{{Name: "id", Type: domain.FieldInteger, ID: true}}},
		{Name: "Reserved", Table: "schema_migrations", Fields: []domain.FieldMapping{{Name: "id", Type: domain.FieldInteger, ID: true}}},
		{Name: "Composite", Fields: []domain.FieldMapping{
			{Name: "a", Type: domain.FieldInteger, ID: true},
			{Name: "b", Type: domain.FieldInteger, ID: true, Nullable: true},
			{Type: domain.FieldString},
		}, Relations: []domain.Relation{{Target: "X"}, {Name: "self", Target: "Composite", Type: "many_to_many"}, {Name: "none"}}},
	}}

	errs := schema.Validate(m)

	unnamed, ok := errs.Get("#1")
	require.True(t, ok)
	assert.Contains(t, unnamed, "class name is missing")

	reserved, ok := errs.Get("Reserved")
	require.True(t, ok)
	assert.Contains(t, reserved, `table name "schema_migrations" is reserved`)

	composite, ok := errs.Get("Composite")
	require.True(t, ok)
	assert.Contains(t, composite, "composite identifiers are not supported")
	assert.Contains(t, composite, `identifier field "b" cannot be nullable`)
	assert.Contains(t, composite, "field #3 has no name")
	assert.Contains(t, composite, "relation #1 has no name")
	assert.Contains(t, composite, `relation "self" has unknown type "many_to_many"`)
	assert.Contains(t, composite, `relation "none" has no target`)
}

func TestCreateStatements(t *testing.T) {
	got := schema.CreateStatements(blogMapping())
	want := []string{
		"CREATE TABLE blog_domain_model_author (id INTEGER NOT NULL PRIMARY KEY, email_address VARCHAR(255) NOT NULL)",
		"CREATE UNIQUE INDEX uniq_blog_domain_model_author_email_address ON blog_domain_model_author (email_address)",
		"CREATE TABLE blog_domain_model_post (id INTEGER NOT NULL PRIMARY KEY, title VARCHAR(255) NOT NULL, published_at DATETIME, author_id INTEGER REFERENCES blog_domain_model_author (id))",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateStatements mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_EmptyDatabaseCreatesEverything(t *testing.T) {
	d := schema.Compare(blogMapping(), nil, false)
	require.Len(t, d.Changes, 2)
	assert.Equal(t, schema.CreateTableChange, d.Changes[0].Kind)
	assert.Equal(t, schema.CreateStatements(blogMapping()), d.Up())
	assert.Equal(t, []string{"DROP TABLE blog_domain_model_post", "DROP TABLE blog_domain_model_author"}, d.Down())
}

func TestCompare_InSyncIsEmpty(t *testing.T) {
	existing := []domain.TableInfo{
		{Name: "blog_domain_model_author", Columns: []domain.ColumnInfo{{Name: "id"}, {Name: "email_address"}}},
		{Name: "blog_domain_model_post", Columns: []domain.ColumnInfo{{Name: "id"}, {Name: "title"}, {Name: "published_at"}, {Name: "author_id"}}},
		{Name: "schema_migrations", Columns: []domain.ColumnInfo{{Name: "version"}}},
	}
	assert.True(t, schema.Compare(blogMapping(), existing, false).Empty())
	assert.True(t, schema.Compare(blogMapping(), existing, true).Empty())
}

func TestCompare_AddsMissingColumns(t *testing.T) {
	existing := []domain.TableInfo{
		{Name: "blog_domain_model_author", Columns: []domain.ColumnInfo{{Name: "id"}}},
		{Name: "blog_domain_model_post", Columns: []domain.ColumnInfo{{Name: "id"}, {Name: "title"}, {Name: "published_at"}, {Name: "author_id"}}},
	}

	d := schema.Compare(blogMapping(), existing, false)
	want := []string{
		"ALTER TABLE blog_domain_model_author ADD COLUMN email_address VARCHAR(255) NOT NULL DEFAULT ''",
		"CREATE UNIQUE INDEX uniq_blog_domain_model_author_email_address ON blog_domain_model_author (email_address)",
	}
	if diff := cmp.Diff(want, d.Up()); diff != "" {
		t.Errorf("Up mismatch (-want +got):\n%s", diff)
	}
	wantDown := []string{
		"DROP INDEX uniq_blog_domain_model_author_email_address",
		"ALTER TABLE blog_domain_model_author DROP COLUMN email_address",
	}
	if diff := cmp.Diff(wantDown, d.Down()); diff != "" {
		t.Errorf("Down mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_CleanDropsUnmapped(t *testing.T) {
	existing := []domain.TableInfo{
		{Name: "blog_domain_model_author", Columns: []domain.ColumnInfo{{Name: "id"}, {Name: "email_address"}, {Name: "legacy", Type: "TEXT"}}},
		{Name: "blog_domain_model_post", Columns: []domain.ColumnInfo{{Name: "id"}, {Name: "title"}, {Name: "published_at"}, {Name: "author_id"}}},
		{Name: "old_stuff", Columns: []domain.ColumnInfo{{Name: "id", Type: "INTEGER", NotNull: true, PrimaryKey: true}}},
		{Name: "sqlite_sequence"},
	}

	safe := schema.Compare(blogMapping(), existing, false)
	assert.True(t, safe.Empty(), "update without clean never drops")

	d := schema.Compare(blogMapping(), existing, true)
	require.Len(t, d.Changes, 2)
	assert.Equal(t, schema.DropColumnChange, d.Changes[0].Kind)
	assert.Equal(t, "legacy", d.Changes[0].Column)
	assert.Equal(t, schema.DropTableChange, d.Changes[1].Kind)
	assert.Equal(t, []string{
		"ALTER TABLE blog_domain_model_author DROP COLUMN legacy",
		"DROP TABLE old_stuff",
	}, d.Up())
	assert.Equal(t, []string{
		"CREATE TABLE old_stuff (id INTEGER NOT NULL PRIMARY KEY)",
		"ALTER TABLE blog_domain_model_author ADD COLUMN legacy TEXT",
	}, d.Down())
}

func TestCompare_CleanDropsIndexesBeforeColumn(t *testing.T) {
	m := blogMapping()
	m.Classes[0].Fields = m.Classes[0].Fields[:1]

	existing := []domain.TableInfo{
		{
			Name:    "blog_domain_model_author",
			Columns: []domain.ColumnInfo{{Name: "id"}, {Name: "email_address", Type: "VARCHAR(255)", NotNull: true}},
			Indexes: []domain.IndexInfo{
				{
					Name:       "idx_author_lookup",
					Columns:    []string{"id", "email_address"},
					Definition: "CREATE INDEX idx_author_lookup ON blog_domain_model_author (id, email_address)",
				},
				{Name: "idx_author_id", Columns: []string{"id"}},
				{Name: "uniq_blog_domain_model_author_email_address", Unique: true, Columns: []string{"email_address"}},
			},
		},
		{Name: "blog_domain_model_post", Columns: []domain.ColumnInfo{{Name: "id"}, {Name: "title"}, {Name: "published_at"}, {Name: "author_id"}}},
	}

	d := schema.Compare(m, existing, true)
	require.Len(t, d.Changes, 1)
	want := []string{
		"DROP INDEX IF EXISTS idx_author_lookup",
		"DROP INDEX IF EXISTS uniq_blog_domain_model_author_email_address",
		"ALTER TABLE blog_domain_model_author DROP COLUMN email_address",
	}
	if diff := cmp.Diff(want, d.Up()); diff != "" {
		t.Errorf("Up mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{
		"ALTER TABLE blog_domain_model_author ADD COLUMN email_address VARCHAR(255)",
		"CREATE INDEX idx_author_lookup ON blog_domain_model_author (id, email_address)",
		"CREATE UNIQUE INDEX uniq_blog_domain_model_author_email_address ON blog_domain_model_author (email_address)",
	}, d.Down())
}

func TestCompare_DroppedTableRestoresIndexes(t *testing.T) {
	existing := []domain.TableInfo{
		{
			Name:    "old_stuff",
			Columns: []domain.ColumnInfo{{Name: "code", Type: "TEXT"}},
			Indexes: []domain.IndexInfo{{Name: "uniq_old_stuff_code", Unique: true, Columns: []string{"code"}}},
		},
	}

	d := schema.Compare(domain.Mapping{}, existing, true)
	assert.Equal(t, []string{"DROP TABLE old_stuff"}, d.Up())
	assert.Equal(t, []string{
		"CREATE TABLE old_stuff (code TEXT)",
		"CREATE UNIQUE INDEX uniq_old_stuff_code ON old_stuff (code)",
	}, d.Down())
}

func TestIsInternalTable(t *testing.T) {
	assert.True(t, schema.IsInternalTable("schema_migrations"))
	assert.True(t, schema.IsInternalTable("sqlite_sequence"))
	assert.False(t, schema.IsInternalTable("posts"))
}
