package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// conditions accumulates conjunctive WHERE clauses with positional arguments.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) next() string {
	return fmt.Sprintf("$%d", len(c.args)+1)
}

// eq adds column = value. Zero values are skipped by callers.
func (c *conditions) eq(column string, value interface{}) {
	c.clauses = append(c.clauses, fmt.Sprintf("%s = %s", column, c.next()))
	c.args = append(c.args, value)
}

func (c *conditions) raw(clause string, value interface{}) {
	c.clauses = append(c.clauses, fmt.Sprintf(clause, c.next()))
	c.args = append(c.args, value)
}

// search adds one OR-ed, case-insensitive substring match over the expressions.
func (c *conditions) search(term string, expressions ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(expressions) == 0 {
		return
	}
	placeholder := c.next()
	parts := make([]string, len(expressions))
	for i, expr := range expressions {
		parts[i] = fmt.Sprintf("%s ILIKE %s", expr, placeholder)
	}
	c.clauses = append(c.clauses, "("+strings.Join(parts, " OR ")+")")
	c.args = append(c.args, "%"+escapeLike(term)+"%")
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// orderBy resolves a client sort key through a whitelist; unknown keys fall back.
func orderBy(sortBy, sortOrder string, allowed map[string]string, fallback string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = allowed[fallback]
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// validID reports whether id can be compared with a UUID primary key. Lookups
// with anything else are answered with sql.ErrNoRows without a round trip.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
