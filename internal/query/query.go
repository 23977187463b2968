// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query models row filters as a small predicate tree and renders
// them to PostgreSQL with positional arguments. Values never reach the SQL
// text; identifiers are checked against a conservative pattern.
package query

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// identPattern accepts lowercase snake_case identifiers only.
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Predicate is a node of a WHERE clause. The set of implementations is
// closed: Eq, Contains, In, JSONContains, Range, And and Or.
type Predicate interface {
	render(b *builder)
}

// Eq matches rows whose column equals Value.
type Eq struct {
	Column string
	Value  any
}

// Contains matches rows whose column contains Value as a case-insensitive
// substring. LIKE wildcards inside Value are matched literally.
type Contains struct {
	Column string
	Value  string
}

// In matches rows whose column equals any of Values. An empty list matches
// nothing.
type In struct {
	Column string
	Values []any
}

// JSONContains matches rows whose jsonb column contains Value (the @>
// operator). Value is marshalled to JSON.
type JSONContains struct {
	Column string
	Value  any
}

// Range is a half-open time interval [From, Before). A zero bound is open.
type Range struct {
	Column string
	From   time.Time
	Before time.Time
}

// And matches when every child matches. An empty And matches everything.
type And []Predicate

// Or matches when any child matches. An empty Or matches nothing.
type Or []Predicate

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Select describes a single-table read.
type Select struct {
	Table   string
	Columns []string
	Where   Predicate
	OrderBy []Order
	Limit   int
	Offset  int
}

// builder accumulates SQL text and arguments while rendering a tree.
type builder struct {
	sb   strings.Builder
	args []any
	err  error
}

func (b *builder) write(s string) {
	b.sb.WriteString(s)
}

// arg records v and returns its placeholder.
func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// ident validates an identifier and returns it unchanged.
func (b *builder) ident(name string) string {
	if !identPattern.MatchString(name) && b.err == nil {
		b.err = fmt.Errorf("query: invalid identifier %q", name)
	}
	return name
}

func (p Eq) render(b *builder) {
	b.write(b.ident(p.Column) + " = " + b.arg(p.Value))
}

func (p Contains) render(b *builder) {
	b.write(b.ident(p.Column) + " ILIKE " + b.arg("%"+EscapeLike(p.Value)+"%") + ` ESCAPE '\'`)
}

func (p In) render(b *builder) {
	if len(p.Values) == 0 {
		b.write("FALSE")
		return
	}
	placeholders := make([]string, len(p.Values))
	for i, v := range p.Values {
		placeholders[i] = b.arg(v)
	}
	b.write(b.ident(p.Column) + " IN (" + strings.Join(placeholders, ", ") + ")")
}

func (p JSONContains) render(b *builder) {
	raw, err := json.Marshal(p.Value)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("query: marshal json value: %w", err)
		}
		return
	}
	b.write(b.ident(p.Column) + " @> " + b.arg(string(raw)) + "::jsonb")
}

func (p Range) render(b *builder) {
	col := b.ident(p.Column)
	switch {
	case p.From.IsZero() && p.Before.IsZero():
		b.write("TRUE")
	case p.Before.IsZero():
		b.write(col + " >= " + b.arg(p.From))
	case p.From.IsZero():
		b.write(col + " < " + b.arg(p.Before))
	default:
		b.write("(" + col + " >= " + b.arg(p.From) + " AND " + col + " < " + b.arg(p.Before) + ")")
	}
}

func (p And) render(b *builder) {
	renderGroup(b, p, " AND ", "TRUE")
}

func (p Or) render(b *builder) {
	renderGroup(b, p, " OR ", "FALSE")
}

// renderGroup joins children with op, skipping nil entries. A group with
// no children renders as empty; a single child renders without parentheses.
func renderGroup(b *builder, children []Predicate, op, empty string) {
	var live []Predicate
	for _, c := range children {
		if c != nil {
			live = append(live, c)
		}
	}
	switch len(live) {
	case 0:
		b.write(empty)
		return
	case 1:
		live[0].render(b)
		return
	}
	b.write("(")
	for i, c := range live {
		if i > 0 {
			b.write(op)
		}
		c.render(b)
	}
	b.write(")")
}

// SQL renders the select statement and its arguments.
func (s Select) SQL() (string, []any, error) {
	b := &builder{}
	if len(s.Columns) == 0 {
		return "", nil, fmt.Errorf("query: select on %q has no columns", s.Table)
	}
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = b.ident(c)
	}
	b.write("SELECT " + strings.Join(cols, ", ") + " FROM " + b.ident(s.Table))
	renderWhere(b, s.Where)
	if len(s.OrderBy) > 0 {
		terms := make([]string, len(s.OrderBy))
		for i, o := range s.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms[i] = b.ident(o.Column) + " " + dir
		}
		b.write(" ORDER BY " + strings.Join(terms, ", "))
	}
	if s.Limit > 0 {
		b.write(" LIMIT " + b.arg(s.Limit))
	}
	if s.Offset > 0 {
		b.write(" OFFSET " + b.arg(s.Offset))
	}
	if b.err != nil {
		return "", nil, b.err
	}
	return b.sb.String(), b.args, nil
}

// Count renders a COUNT(*) over table filtered by where.
func Count(table string, where Predicate) (string, []any, error) {
	b := &builder{}
	b.write("SELECT COUNT(*) FROM " + b.ident(table))
	renderWhere(b, where)
	if b.err != nil {
		return "", nil, b.err
	}
	return b.sb.String(), b.args, nil
}

func renderWhere(b *builder, where Predicate) {
	if where == nil {
		return
	}
	b.write(" WHERE ")
	where.render(b)
}

// EscapeLike escapes the LIKE metacharacters %, _ and the escape character
// itself so s matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
