// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package query

import (
	"strconv"
	"strings"
	"time"
)

// Builder is a SELECT over one table with AND-joined conditions.
//
//	q, args := query.Select("interaction_log", "event_id, user_id").
//		Eq("user_id", 42).
//		OrderBy("created_at DESC").
//		Limit(10).
//		Build()
type Builder struct {
	table   string
	columns string
	conds   []string
	args    []any
	order   string
	limit   int
}

// Select starts a statement reading columns from table.
func Select(table, columns string) *Builder {
	return &Builder{table: table, columns: columns}
}

// Where adds a raw condition. Conditions containing OR are parenthesised so
// they cannot widen the AND chain.
func (b *Builder) Where(cond string, args ...any) *Builder {
	if strings.Contains(strings.ToUpper(cond), " OR ") {
		cond = "(" + cond + ")"
	}
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
	return b
}

// Eq adds "column = ?".
func (b *Builder) Eq(column string, value any) *Builder {
	return b.Where(column+" = ?", value)
}

// In adds "column IN (?, ...)". An empty list adds nothing.
func In[T any](b *Builder, column string, values []T) *Builder {
	if len(values) == 0 {
		return b
	}
	b.conds = append(b.conds, column+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")+")")
	for _, v := range values {
		b.args = append(b.args, v)
	}
	return b
}

// Between bounds a timestamp column. Nil bounds are open.
func (b *Builder) Between(column string, from, to *time.Time) *Builder {
	if from != nil {
		b.Where(column+" >= ?", *from)
	}
	if to != nil {
		b.Where(column+" <= ?", *to)
	}
	return b
}

// OrderBy sets the ORDER BY expression.
func (b *Builder) OrderBy(expr string) *Builder {
	b.order = expr
	return b
}

// Limit caps the row count. Non-positive n means no limit.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Conditions returns the number of conditions added so far.
func (b *Builder) Conditions() int {
	return len(b.conds)
}

// Build renders the statement and its arguments. The limit is bound as the
// last argument.
func (b *Builder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(b.columns)
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conds, " AND "))
	}
	if b.order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.order)
	}

	args := make([]any, len(b.args), len(b.args)+1)
	copy(args, b.args)
	if b.limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}
	return sb.String(), args
}

// String renders the statement without arguments, for logs.
func (b *Builder) String() string {
	q, args := b.Build()
	return q + " [" + strconv.Itoa(len(args)) + " args]"
}
