package schema

import (
	"fmt"
	"strings"

	"github.com/openkraft/schemactl/internal/domain"
)

// Column is the relational shape of a mapped field or join column.
type Column struct {
	Name       string           `json:"name"`
	Field      string           `json:"field"`
	Type       string           `json:"type"`
	FieldType  domain.FieldType `json:"field_type"`
	NotNull    bool             `json:"not_null"`
	PrimaryKey bool             `json:"primary_key"`
	Unique     bool             `json:"unique"`
	References string           `json:"references,omitempty"`
}

// Columns lists the columns of c: fields first, then relation join columns.
// Relations whose target cannot be resolved are skipped.
func Columns(c domain.ClassMapping, m domain.Mapping) []Column {
	var cols []Column
	for _, f := range c.Fields {
		cols = append(cols, Column{
			Name:       ColumnName(f),
			Field:      f.Name,
			Type:       SQLType(f.Type),
			FieldType:  f.Type,
			NotNull:    !f.Nullable,
			PrimaryKey: f.ID,
			Unique:     f.Unique && !f.ID,
		})
	}
	for _, r := range c.Relations {
		target, ok := m.Class(r.Target)
		if !ok {
			continue
		}
		id, ok := target.Identifier()
		if !ok {
			continue
		}
		cols = append(cols, Column{
			Name:       JoinColumnName(r),
			Field:      r.Name,
			Type:       SQLType(id.Type),
			FieldType:  id.Type,
			Unique:     r.Type == domain.OneToOne,
			References: fmt.Sprintf("%s (%s)", TableName(target), ColumnName(id)),
		})
	}
	return cols
}

func (c Column) definition() string {
	var b strings.Builder
	b.WriteString(c.Name + " " + c.Type)
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if c.References != "" {
		b.WriteString(" REFERENCES " + c.References)
	}
	return b.String()
}

// addDefinition is the definition used by ALTER TABLE ADD COLUMN, which
// rejects primary keys and NOT NULL columns without a constant default.
func (c Column) addDefinition() string {
	add := c
	add.PrimaryKey = false
	def := add.definition()
	if c.NotNull {
		def += " DEFAULT " + zeroDefault(c.FieldType)
	}
	return def
}

// UniqueIndexName names the unique index backing a unique column.
func UniqueIndexName(table, column string) string {
	return "uniq_" + table + "_" + column
}

func createUniqueIndex(table string, c Column) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", UniqueIndexName(table, c.Name), table, c.Name)
}

func dropUniqueIndex(table string, c Column) string {
	return "DROP INDEX " + UniqueIndexName(table, c.Name)
}

// CreateTable returns the statements creating the table of c and its unique
// indexes.
func CreateTable(c domain.ClassMapping, m domain.Mapping) []string {
	table := TableName(c)
	cols := Columns(c, m)
	defs := make([]string, 0, len(cols))
	for _, col := range cols {
		defs = append(defs, col.definition())
	}
	stmts := []string{fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))}
	for _, col := range cols {
		if col.Unique {
			stmts = append(stmts, createUniqueIndex(table, col))
		}
	}
	return stmts
}

// CreateStatements returns the statements creating every mapped table in
// declaration order.
func CreateStatements(m domain.Mapping) []string {
	var stmts []string
	for _, c := range m.Classes {
		stmts = append(stmts, CreateTable(c, m)...)
	}
	return stmts
}

// recreateTable rebuilds a dropped table from its introspected shape.
func recreateTable(t domain.TableInfo) string {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		defs = append(defs, existingDefinition(c))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
}

func existingDefinition(c domain.ColumnInfo) string {
	def := strings.TrimSpace(c.Name + " " + c.Type)
	if c.NotNull {
		def += " NOT NULL"
	}
	if c.PrimaryKey {
		def += " PRIMARY KEY"
	}
	return def
}
