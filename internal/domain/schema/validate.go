package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openkraft/schemactl/internal/domain"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a mapping and returns the errors per class, in declaration
// order. Classes without errors are absent; an empty result means the mapping
// is valid.
func Validate(m domain.Mapping) *domain.MappingErrors {
	out := domain.NewMappingErrors()
	seenClass := map[string]bool{}
	tableOwner := map[string]string{}

	for i, c := range m.Classes {
		key := c.Name
		var errs []string

		if key == "" {
			key = fmt.Sprintf("#%d", i+1)
			errs = append(errs, "class name is missing")
		} else if seenClass[key] {
			errs = append(errs, "class is mapped more than once")
		}
		seenClass[c.Name] = true

		table := TableName(c)
		switch {
		case table == "":
			errs = append(errs, "table name could not be derived")
		case !identifierRe.MatchString(table):
			errs = append(errs, fmt.Sprintf("table name %q is not a valid identifier", table))
		case strings.EqualFold(table, MigrationsTable):
			errs = append(errs, fmt.Sprintf("table name %q is reserved", table))
		default:
			lower := strings.ToLower(table)
			if owner, ok := tableOwner[lower]; ok && owner != c.Name {
				errs = append(errs, fmt.Sprintf("table %q is already mapped by %s", table, owner))
			} else {
				tableOwner[lower] = c.Name
			}
		}

		errs = append(errs, validateFields(c)...)
		errs = append(errs, validateRelations(c, m)...)

		if len(errs) == 0 {
			continue
		}
		if existing, ok := out.Get(key); ok {
			errs = append(existing, errs...)
		}
		out.Set(key, errs)
	}
	return out
}

func validateFields(c domain.ClassMapping) []string {
	var errs []string
	columns := map[string]bool{}
	ids := 0

	for i, f := range c.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Sprintf("field #%d has no name", i+1))
			continue
		}
		if SQLType(f.Type) == "" {
			errs = append(errs, fmt.Sprintf("field %q has unknown type %q", f.Name, f.Type))
		}
		col := ColumnName(f)
		if !identifierRe.MatchString(col) {
			errs = append(errs, fmt.Sprintf("column name %q of field %q is not a valid identifier", col, f.Name))
		}
		if columns[strings.ToLower(col)] {
			errs = append(errs, fmt.Sprintf("column %q is mapped more than once", col))
		}
		columns[strings.ToLower(col)] = true
		if f.ID {
			ids++
			if f.Nullable {
				errs = append(errs, fmt.Sprintf("identifier field %q cannot be nullable", f.Name))
			}
		}
	}

	for _, r := range c.Relations {
		if r.Name == "" {
			continue
		}
		col := JoinColumnName(r)
		if columns[strings.ToLower(col)] {
			errs = append(errs, fmt.Sprintf("column %q is mapped more than once", col))
		}
		columns[strings.ToLower(col)] = true
	}

	switch {
	case ids == 0:
		errs = append(errs, "no identifier field is mapped")
	case ids > 1:
		errs = append(errs, "composite identifiers are not supported")
	}
	return errs
}

func validateRelations(c domain.ClassMapping, m domain.Mapping) []string {
	var errs []string
	for i, r := range c.Relations {
		if r.Name == "" {
			errs = append(errs, fmt.Sprintf("relation #%d has no name", i+1))
			continue
		}
		if r.Type != "" && !isValidRelationType(r.Type) {
			errs = append(errs, fmt.Sprintf("relation %q has unknown type %q", r.Name, r.Type))
		}
		if r.Target == "" {
			errs = append(errs, fmt.Sprintf("relation %q has no target", r.Name))
			continue
		}
		target, ok := m.Class(r.Target)
		if !ok {
			errs = append(errs, fmt.Sprintf("relation %q targets unknown class %s", r.Name, r.Target))
			continue
		}
		if _, ok := target.Identifier(); !ok {
			errs = append(errs, fmt.Sprintf("relation %q targets %s which has no identifier", r.Name, r.Target))
		}
	}
	return errs
}

func isValidRelationType(t domain.RelationType) bool {
	for _, v := range domain.ValidRelationTypes {
		if t == v {
			return true
		}
	}
	return false
}
