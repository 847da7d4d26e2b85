package query

type assignment struct {
	col   Column
	value any
}

// UpdateQuery is a bulk UPDATE. Columns of the target table render
// unqualified, which both dialects require in SET and accept in WHERE.
type UpdateQuery struct {
	table Table
	sets  []assignment
	where []Predicate
}

// Update starts a bulk update of t.
func Update(t Table) *UpdateQuery {
	return &UpdateQuery{table: t}
}

// Set assigns v (a bound value or an Expr such as col.Add(1)) to col.
func (q *UpdateQuery) Set(col Column, v any) *UpdateQuery {
	q.sets = append(q.sets, assignment{col: col, value: v})
	return q
}

// Where appends conditions combined with AND; nil predicates are ignored.
// An update without conditions touches every row.
func (q *UpdateQuery) Where(preds ...Predicate) *UpdateQuery {
	q.where = append(q.where, compact(preds)...)
	return q
}

// Build renders q for dialect d.
func (q *UpdateQuery) Build(d Dialect) (string, []any, error) {
	if len(q.sets) == 0 {
		return "", nil, errNoAssignment
	}
	target := q.table
	b := &renderer{dialect: d, bare: &target}
	b.write("UPDATE " + q.table.Name + " SET ")
	for i, a := range q.sets {
		if i > 0 {
			b.write(", ")
		}
		b.write(a.col.Name + " = ")
		if err := toExpr(a.value).render(b); err != nil {
			return "", nil, err
		}
	}
	if len(q.where) > 0 {
		b.write(" WHERE ")
		if err := renderJunction(b, q.where, " AND "); err != nil {
			return "", nil, err
		}
	}
	return b.sb.String(), b.args, nil
}

// DeleteQuery is a bulk DELETE.
type DeleteQuery struct {
	table Table
	where []Predicate
}

// Delete starts a bulk delete from t.
func Delete(t Table) *DeleteQuery {
	return &DeleteQuery{table: t}
}

// Where appends conditions combined with AND; nil predicates are ignored.
func (q *DeleteQuery) Where(preds ...Predicate) *DeleteQuery {
	q.where = append(q.where, compact(preds)...)
	return q
}

// Build renders q for dialect d.
func (q *DeleteQuery) Build(d Dialect) (string, []any, error) {
	target := q.table
	b := &renderer{dialect: d, bare: &target}
	b.write("DELETE FROM " + q.table.Name)
	if len(q.where) > 0 {
		b.write(" WHERE ")
		if err := renderJunction(b, q.where, " AND "); err != nil {
			return "", nil, err
		}
	}
	return b.sb.String(), b.args, nil
}

// InsertQuery is a single-row INSERT, optionally returning a column of the
// new row (both dialects accept RETURNING).
type InsertQuery struct {
	table     Table
	cols      []Column
	values    []any
	returning *Column
}

// Insert starts an insert into t.
func Insert(t Table) *InsertQuery {
	return &InsertQuery{table: t}
}

// Value adds col = v to the inserted row.
func (q *InsertQuery) Value(col Column, v any) *InsertQuery {
	q.cols = append(q.cols, col)
	q.values = append(q.values, v)
	return q
}

// Returning reads col of the inserted row back.
func (q *InsertQuery) Returning(col Column) *InsertQuery {
	q.returning = &col
	return q
}

// Build renders q for dialect d.
func (q *InsertQuery) Build(d Dialect) (string, []any, error) {
	if len(q.cols) == 0 {
		return "", nil, errNoAssignment
	}
	target := q.table
	b := &renderer{dialect: d, bare: &target}
	b.write("INSERT INTO " + q.table.Name + " (")
	for i, c := range q.cols {
		if i > 0 {
			b.write(", ")
		}
		b.write(c.Name)
	}
	b.write(") VALUES (")
	for i, v := range q.values {
		if i > 0 {
			b.write(", ")
		}
		if err := toExpr(v).render(b); err != nil {
			return "", nil, err
		}
	}
	b.write(")")
	if q.returning != nil {
		b.write(" RETURNING ")
		if err := q.returning.render(b); err != nil {
			return "", nil, err
		}
	}
	return b.sb.String(), b.args, nil
}
