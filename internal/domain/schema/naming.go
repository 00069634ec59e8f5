// Package schema turns an entity mapping into relational DDL: naming rules,
// mapping validation, CREATE statements and the diff against an existing
// database.
package schema

import (
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"github.com/openkraft/schemactl/internal/domain"
)

// MigrationsTable records executed migration versions. It is never diffed.
const MigrationsTable = "schema_migrations"

// TableName returns the explicit table of c or derives one from the class
// name: Blog\Domain\Model\Post -> blog_domain_model_post.
func TableName(c domain.ClassMapping) string {
	if c.Table != "" {
		return c.Table
	}
	parts := strings.FieldsFunc(c.Name, func(r rune) bool { return r == '\\' || r == '.' })
	var words []string
	for _, p := range parts {
		words = append(words, snakeWords(p)...)
	}
	return strings.Join(words, "_")
}

// ColumnName returns the explicit column of f or its snake-cased name.
func ColumnName(f domain.FieldMapping) string {
	if f.Column != "" {
		return f.Column
	}
	return Snake(f.Name)
}

// JoinColumnName returns the column storing the identifier of a relation target.
func JoinColumnName(r domain.Relation) string {
	return Snake(r.Name) + "_id"
}

// Snake converts a camelCase identifier to snake_case.
func Snake(name string) string {
	return strings.Join(snakeWords(name), "_")
}

func snakeWords(name string) []string {
	var words []string
	for _, w := range camelcase.Split(name) {
		if !isWord(w) {
			continue
		}
		words = append(words, strings.ToLower(w))
	}
	return words
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// SQLType maps a field type to the declared SQLite column type.
func SQLType(t domain.FieldType) string {
	switch t {
	case domain.FieldString:
		return "VARCHAR(255)"
	case domain.FieldText, domain.FieldJSON:
		return "TEXT"
	case domain.FieldInteger:
		return "INTEGER"
	case domain.FieldBigint:
		return "BIGINT"
	case domain.FieldBoolean:
		return "BOOLEAN"
	case domain.FieldFloat:
		return "REAL"
	case domain.FieldDecimal:
		return "NUMERIC"
	case domain.FieldDatetime:
		return "DATETIME"
	case domain.FieldDate:
		return "DATE"
	case domain.FieldBlob:
		return "BLOB"
	default:
		return ""
	}
}

// zeroDefault is the constant default used when a NOT NULL column is added to
// an existing table.
func zeroDefault(t domain.FieldType) string {
	switch t {
	case domain.FieldInteger, domain.FieldBigint, domain.FieldBoolean, domain.FieldFloat, domain.FieldDecimal:
		return "0"
	case domain.FieldDatetime:
		return "'1970-01-01 00:00:00'"
	case domain.FieldDate:
		return "'1970-01-01'"
	case domain.FieldBlob:
		return "x''"
	default:
		return "''"
	}
}
