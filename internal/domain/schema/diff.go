package schema

import (
	"fmt"
	"strings"

	"github.com/openkraft/schemactl/internal/domain"
)

// ChangeKind classifies a schema change.
type ChangeKind string

const (
	CreateTableChange ChangeKind = "create_table"
	AddColumnChange   ChangeKind = "add_column"
	DropTableChange   ChangeKind = "drop_table"
	DropColumnChange  ChangeKind = "drop_column"
)

// Change is one schema change with the statements applying and reverting it.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Table  string     `json:"table"`
	Column string     `json:"column,omitempty"`
	Up     []string   `json:"up"`
	Down   []string   `json:"down"`
}

// Diff is the ordered list of changes bringing a database in line with a
// mapping.
type Diff struct {
	Changes []Change `json:"changes"`
}

// Empty reports whether the database already matches the mapping.
func (d Diff) Empty() bool { return len(d.Changes) == 0 }

// Up returns the statements applying every change in order.
func (d Diff) Up() []string {
	var out []string
	for _, c := range d.Changes {
		out = append(out, c.Up...)
	}
	return out
}

// Down returns the statements reverting every change, last change first.
func (d Diff) Down() []string {
	var out []string
	for i := len(d.Changes) - 1; i >= 0; i-- {
		out = append(out, d.Changes[i].Down...)
	}
	return out
}

// IsInternalTable reports whether a table is managed by SQLite or by the
// migration bookkeeping and must never be diffed.
func IsInternalTable(name string) bool {
	return strings.EqualFold(name, MigrationsTable) || strings.HasPrefix(strings.ToLower(name), "sqlite_")
}

// Compare computes the changes needed to bring existing in line with m.
// Missing tables and columns are always added; unmapped tables and columns are
// dropped only when clean is set.
func Compare(m domain.Mapping, existing []domain.TableInfo, clean bool) Diff {
	var d Diff
	mapped := map[string]bool{}

	for _, c := range m.Classes {
		table := TableName(c)
		mapped[strings.ToLower(table)] = true
		cols := Columns(c, m)

		current, ok := findTable(existing, table)
		if !ok {
			d.Changes = append(d.Changes, Change{
				Kind:  CreateTableChange,
				Table: table,
				Up:    CreateTable(c, m),
				Down:  []string{"DROP TABLE " + table},
			})
			continue
		}

		for _, col := range cols {
			if hasColumn(current, col.Name) {
				continue
			}
			up := []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, col.addDefinition())}
			down := []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, col.Name)}
			if col.Unique {
				up = append(up, createUniqueIndex(table, col))
				down = append([]string{dropUniqueIndex(table, col)}, down...)
			}
			d.Changes = append(d.Changes, Change{Kind: AddColumnChange, Table: table, Column: col.Name, Up: up, Down: down})
		}

		if !clean {
			continue
		}
		for _, ec := range current.Columns {
			if columnMapped(cols, ec.Name) {
				continue
			}
			d.Changes = append(d.Changes, dropColumn(current, ec))
		}
	}

	if clean {
		for _, t := range existing {
			if IsInternalTable(t.Name) || mapped[strings.ToLower(t.Name)] {
				continue
			}
			d.Changes = append(d.Changes, Change{
				Kind:  DropTableChange,
				Table: t.Name,
				Up:    []string{"DROP TABLE " + t.Name},
				Down:  append([]string{recreateTable(t)}, recreateIndexes(t.Name, t.Indexes)...),
			})
		}
	}
	return d
}

func findTable(tables []domain.TableInfo, name string) (domain.TableInfo, bool) {
	for _, t := range tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return domain.TableInfo{}, false
}

func hasColumn(t domain.TableInfo, name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func columnMapped(cols []Column, name string) bool {
	for _, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// dropColumn drops the indexes covering a column before the column itself;
// SQLite refuses to drop an indexed column. Down restores the column first.
func dropColumn(t domain.TableInfo, c domain.ColumnInfo) Change {
	var up []string
	var covering []domain.IndexInfo
	for _, idx := range t.Indexes {
		if idx.Covers(c.Name) {
			covering = append(covering, idx)
			up = append(up, "DROP INDEX IF EXISTS "+idx.Name)
		}
	}
	up = append(up, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", t.Name, c.Name))
	down := append([]string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", t.Name, droppedColumnDefinition(c))},
		recreateIndexes(t.Name, covering)...)
	return Change{Kind: DropColumnChange, Table: t.Name, Column: c.Name, Up: up, Down: down}
}

func recreateIndexes(table string, idx []domain.IndexInfo) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if i.Definition != "" {
			out = append(out, i.Definition)
			continue
		}
		kind := "INDEX"
		if i.Unique {
			kind = "UNIQUE INDEX"
		}
		out = append(out, fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, i.Name, table, strings.Join(i.Columns, ", ")))
	}
	return out
}

// droppedColumnDefinition restores a dropped column as nullable; the original
// data is gone either way.
func droppedColumnDefinition(c domain.ColumnInfo) string {
	return strings.TrimSpace(c.Name + " " + c.Type)
}
