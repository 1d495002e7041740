// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references.
// It defines the base table, joins, and column mappings used for SQL
// query construction.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	lastAlias  string
	joins      []string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:    schema,
		table:     table,
		alias:     alias,
		lastAlias: alias,
		columns:   make(map[string]string),
	}
}

// Project adds a column mapping from database column to view property name.
// Columns project against the most recently joined table, or the base table
// when no joins are present.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.lastAlias, column)
	p.columns[viewName] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// ProjectExpr adds a raw SQL expression under a view property name.
// Used for computed columns such as JSONB field extraction.
func (p *ProjectionMap) ProjectExpr(expr, viewName string) *ProjectionMap {
	p.columns[viewName] = expr
	p.columnList = append(p.columnList, expr)
	return p
}

// Join adds a join clause against another table. Subsequent Project calls
// target the joined table's alias.
func (p *ProjectionMap) Join(schema, table, alias, joinType, on string) *ProjectionMap {
	p.joins = append(p.joins, fmt.Sprintf(
		"%s %s.%s %s ON %s",
		joinType, schema, table, alias, on,
	))
	p.lastAlias = alias
	return p
}

// Alias returns the base table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// From returns the FROM clause body: base table plus any join clauses.
func (p *ProjectionMap) From() string {
	from := fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
	if len(p.joins) == 0 {
		return from
	}
	return from + " " + strings.Join(p.joins, " ")
}

// Column returns the qualified column for a view property name, or the
// input unchanged when not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

// ColumnList returns all mapped columns as a slice.
func (p *ProjectionMap) ColumnList() []string {
	return p.columnList
}
