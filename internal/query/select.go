package query

import (
	"errors"
	"strconv"
)

var (
	errNoProjection = errors.New("query: select list is empty")
	errNoFrom       = errors.New("query: no FROM relation")
	errEmptyIn      = errors.New("query: IN with no values")
	errEmptyCase    = errors.New("query: CASE with no WHEN arms")
	errNoAssignment = errors.New("query: no column assignments")
)

// JoinKind selects INNER or LEFT OUTER joins.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT OUTER JOIN"
)

type join struct {
	kind  JoinKind
	table Table
	on    []Predicate
}

// OrderSpec is one ORDER BY key.
type OrderSpec struct {
	Expr      Expr
	Desc      bool
	NullsLast bool
}

// WithNullsLast returns o sorting NULL values after all others.
func (o OrderSpec) WithNullsLast() OrderSpec {
	o.NullsLast = true
	return o
}

// SelectQuery is a SELECT statement under construction. Methods mutate and
// return the receiver so calls chain; use Clone to branch a shared base.
type SelectQuery struct {
	projection []Expr
	from       []Table
	joins      []join
	where      []Predicate
	groupBy    []Expr
	having     []Predicate
	orderBy    []OrderSpec
	limit      int
	offset     int
	hasLimit   bool

	// derived, when set, replaces the FROM list with "(derived) grouped".
	derived *SelectQuery
}

// Select starts a query projecting exprs.
func Select(exprs ...Expr) *SelectQuery {
	return &SelectQuery{projection: exprs}
}

// SelectFrom starts a query projecting every column of t.
func SelectFrom(t Table) *SelectQuery {
	return Select(allColumns{table: t}).From(t)
}

type allColumns struct{ table Table }

func (a allColumns) render(b *renderer) error {
	b.write(a.table.qualifier() + ".*")
	return nil
}

// From adds relations to the FROM clause. Several relations form a theta join
// whose condition belongs in Where.
func (q *SelectQuery) From(tables ...Table) *SelectQuery {
	q.from = append(q.from, tables...)
	return q
}

// Join adds an INNER JOIN.
func (q *SelectQuery) Join(t Table, on ...Predicate) *SelectQuery {
	q.joins = append(q.joins, join{kind: InnerJoin, table: t, on: on})
	return q
}

// LeftJoin adds a LEFT OUTER JOIN; rows of the left side without a match are
// kept with NULLs for t's columns.
func (q *SelectQuery) LeftJoin(t Table, on ...Predicate) *SelectQuery {
	q.joins = append(q.joins, join{kind: LeftJoin, table: t, on: on})
	return q
}

// Where appends conditions combined with AND. Nil predicates are ignored, which
// is what makes optional search criteria compose without branching.
func (q *SelectQuery) Where(preds ...Predicate) *SelectQuery {
	q.where = append(q.where, compact(preds)...)
	return q
}

// GroupBy adds grouping keys.
func (q *SelectQuery) GroupBy(exprs ...Expr) *SelectQuery {
	q.groupBy = append(q.groupBy, exprs...)
	return q
}

// Having appends group conditions combined with AND.
func (q *SelectQuery) Having(preds ...Predicate) *SelectQuery {
	q.having = append(q.having, compact(preds)...)
	return q
}

// OrderBy appends sort keys.
func (q *SelectQuery) OrderBy(specs ...OrderSpec) *SelectQuery {
	q.orderBy = append(q.orderBy, specs...)
	return q
}

// Limit caps the number of rows returned.
func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.limit = n
	q.hasLimit = true
	return q
}

// Offset skips the first n rows.
func (q *SelectQuery) Offset(n int) *SelectQuery {
	q.offset = n
	return q
}

// Clone returns an independent copy of q.
func (q *SelectQuery) Clone() *SelectQuery {
	c := *q
	c.projection = append([]Expr(nil), q.projection...)
	c.from = append([]Table(nil), q.from...)
	c.joins = append([]join(nil), q.joins...)
	c.where = append([]Predicate(nil), q.where...)
	c.groupBy = append([]Expr(nil), q.groupBy...)
	c.having = append([]Predicate(nil), q.having...)
	c.orderBy = append([]OrderSpec(nil), q.orderBy...)
	return &c
}

// CountQuery derives the query that counts the rows q would return before
// paging: same relations, joins and filters, no ordering, offset or limit.
// Grouped queries are counted through a derived table.
func (q *SelectQuery) CountQuery() *SelectQuery {
	if len(q.groupBy) > 0 {
		inner := q.Clone()
		inner.orderBy = nil
		inner.limit, inner.offset, inner.hasLimit = 0, 0, false
		return &SelectQuery{
			projection: []Expr{CountAll()},
			derived:    inner,
		}
	}
	return &SelectQuery{
		projection: []Expr{CountAll()},
		from:       append([]Table(nil), q.from...),
		joins:      append([]join(nil), q.joins...),
		where:      append([]Predicate(nil), q.where...),
	}
}

// Build renders q for dialect d, returning the SQL text and its arguments.
func (q *SelectQuery) Build(d Dialect) (string, []any, error) {
	b := &renderer{dialect: d}
	if err := q.renderSelect(b); err != nil {
		return "", nil, err
	}
	return b.sb.String(), b.args, nil
}

func (q *SelectQuery) renderSelect(b *renderer) error {
	if len(q.projection) == 0 {
		return errNoProjection
	}
	if len(q.from) == 0 && q.derived == nil {
		return errNoFrom
	}

	b.write("SELECT ")
	for i, e := range q.projection {
		if i > 0 {
			b.write(", ")
		}
		if err := e.render(b); err != nil {
			return err
		}
	}

	b.write(" FROM ")
	if q.derived != nil {
		b.write("(")
		if err := q.derived.renderSelect(b); err != nil {
			return err
		}
		b.write(") grouped")
	} else {
		for i, t := range q.from {
			if i > 0 {
				b.write(", ")
			}
			b.write(t.from())
		}
	}

	for _, j := range q.joins {
		b.write(" " + string(j.kind) + " " + j.table.from())
		if on := compact(j.on); len(on) > 0 {
			b.write(" ON ")
			if err := renderJunction(b, on, " AND "); err != nil {
				return err
			}
		}
	}

	if len(q.where) > 0 {
		b.write(" WHERE ")
		if err := renderJunction(b, q.where, " AND "); err != nil {
			return err
		}
	}

	if len(q.groupBy) > 0 {
		b.write(" GROUP BY ")
		for i, e := range q.groupBy {
			if i > 0 {
				b.write(", ")
			}
			if err := e.render(b); err != nil {
				return err
			}
		}
	}

	if len(q.having) > 0 {
		b.write(" HAVING ")
		if err := renderJunction(b, q.having, " AND "); err != nil {
			return err
		}
	}

	if len(q.orderBy) > 0 {
		b.write(" ORDER BY ")
		for i, o := range q.orderBy {
			if i > 0 {
				b.write(", ")
			}
			if err := o.Expr.render(b); err != nil {
				return err
			}
			if o.Desc {
				b.write(" DESC")
			} else {
				b.write(" ASC")
			}
			if o.NullsLast {
				b.write(" NULLS LAST")
			}
		}
	}

	if q.hasLimit {
		b.write(" LIMIT ")
		b.bind(q.limit)
	}
	if q.offset > 0 {
		if !q.hasLimit && b.dialect == SQLite {
			// SQLite only accepts OFFSET after a LIMIT clause.
			b.write(" LIMIT -1")
		}
		b.write(" OFFSET ")
		b.bind(q.offset)
	}
	return nil
}

// String renders q with PostgreSQL placeholders, for logs and error messages.
func (q *SelectQuery) String() string {
	s, args, err := q.Build(Postgres)
	if err != nil {
		return "<invalid query: " + err.Error() + ">"
	}
	return s + " -- " + strconv.Itoa(len(args)) + " args"
}
