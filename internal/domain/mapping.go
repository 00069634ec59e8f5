package domain

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FieldType names a mapped column type.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldText     FieldType = "text"
	FieldInteger  FieldType = "integer"
	FieldBigint   FieldType = "bigint"
	FieldBoolean  FieldType = "boolean"
	FieldFloat    FieldType = "float"
	FieldDecimal  FieldType = "decimal"
	FieldDatetime FieldType = "datetime"
	FieldDate     FieldType = "date"
	FieldJSON     FieldType = "json"
	FieldBlob     FieldType = "blob"
)

// ValidFieldTypes enumerates all recognized field types.
var ValidFieldTypes = []FieldType{
	FieldString, FieldText, FieldInteger, FieldBigint, FieldBoolean,
	FieldFloat, FieldDecimal, FieldDatetime, FieldDate, FieldJSON, FieldBlob,
}

// RelationType names an association kind.
type RelationType string

const (
	ManyToOne RelationType = "many_to_one"
	OneToOne  RelationType = "one_to_one"
)

var ValidRelationTypes = []RelationType{ManyToOne, OneToOne}

// Mapping is the entity mapping document.
type Mapping struct {
	Classes []ClassMapping `yaml:"classes" json:"classes" jsonschema:"required"`
}

// ClassMapping maps one class to one table.
type ClassMapping struct {
	Name      string         `yaml:"name"      json:"name" jsonschema:"required,minLength=1"`
	Table     string         `yaml:"table"     json:"table,omitempty"`
	Fields    []FieldMapping `yaml:"fields"    json:"fields,omitempty"`
	Relations []Relation     `yaml:"relations" json:"relations,omitempty"`
}

// FieldMapping maps one property to one column.
type FieldMapping struct {
	Name     string    `yaml:"name"     json:"name" jsonschema:"required,minLength=1"`
	Column   string    `yaml:"column"   json:"column,omitempty"`
	Type     FieldType `yaml:"type"     json:"type" jsonschema:"required"`
	ID       bool      `yaml:"id"       json:"id,omitempty"`
	Nullable bool      `yaml:"nullable" json:"nullable,omitempty"`
	Unique   bool      `yaml:"unique"   json:"unique,omitempty"`
}

// Relation is a to-one association stored as a nullable join column.
type Relation struct {
	Name   string       `yaml:"name"   json:"name" jsonschema:"required,minLength=1"`
	Target string       `yaml:"target" json:"target,omitempty"`
	Type   RelationType `yaml:"type"   json:"type,omitempty"`
}

// Class returns the class mapping with the given name.
func (m Mapping) Class(name string) (ClassMapping, bool) {
	for _, c := range m.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return ClassMapping{}, false
}

// Identifier returns the first field flagged as id.
func (c ClassMapping) Identifier() (FieldMapping, bool) {
	for _, f := range c.Fields {
		if f.ID {
			return f, true
		}
	}
	return FieldMapping{}, false
}

// MappingErrors maps class names to their mapping errors. Iteration follows
// insertion order.
type MappingErrors = orderedmap.OrderedMap[string, []string]

// NewMappingErrors creates an empty, ordered class -> errors mapping.
func NewMappingErrors() *MappingErrors {
	return orderedmap.New[string, []string]()
}

// ColumnInfo describes an existing database column.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	PrimaryKey bool   `json:"primary_key"`
}

// IndexInfo describes an explicitly created index. Indexes SQLite creates
// for constraints are not listed.
type IndexInfo struct {
	Name       string   `json:"name"`
	Unique     bool     `json:"unique"`
	Columns    []string `json:"columns"`
	Definition string   `json:"definition,omitempty"`
}

// Covers reports whether the index includes column.
func (i IndexInfo) Covers(column string) bool {
	for _, c := range i.Columns {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}

// TableInfo describes an existing database table.
type TableInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
	Indexes []IndexInfo  `json:"indexes,omitempty"`
}
