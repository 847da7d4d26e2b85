package query

import "strings"

// Expr is anything that can appear in a select list, a comparison, an ORDER BY
// or a SET clause.
//
// This is a sealed interface: only types in this package implement it, so the
// renderer can rely on an exhaustive set of node types. Values that are not an
// Expr are bound as parameters, never interpolated into the SQL text.
type Expr interface {
	render(b *renderer) error
}

// Table is a relation in a FROM or JOIN clause together with its alias.
type Table struct {
	Name  string
	Alias string
}

// NewTable returns a table path. An empty alias renders the bare table name.
func NewTable(name, alias string) Table {
	return Table{Name: name, Alias: alias}
}

// Col returns the column path name on t.
func (t Table) Col(name string) Column {
	return Column{Table: t, Name: name}
}

// As returns a second path over the same relation, for self-joins and
// correlated subqueries where the outer alias must not be shadowed.
func (t Table) As(alias string) Table {
	return Table{Name: t.Name, Alias: alias}
}

func (t Table) qualifier() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

func (t Table) from() string {
	if t.Alias == "" || t.Alias == t.Name {
		return t.Name
	}
	return t.Name + " " + t.Alias
}

// Column is a column path such as m.username.
type Column struct {
	Table Table
	Name  string
}

func (c Column) render(b *renderer) error {
	if b.bare != nil && *b.bare == c.Table {
		b.write(c.Name)
		return nil
	}
	b.write(c.Table.qualifier() + "." + c.Name)
	return nil
}

// Eq returns c = v. v may be another Expr (a column or subquery).
func (c Column) Eq(v any) Predicate { return compare(c, OpEq, v) }

// Ne returns c <> v.
func (c Column) Ne(v any) Predicate { return compare(c, OpNe, v) }

// Goe returns c >= v.
func (c Column) Goe(v any) Predicate { return compare(c, OpGoe, v) }

// Gt returns c > v.
func (c Column) Gt(v any) Predicate { return compare(c, OpGt, v) }

// Loe returns c <= v.
func (c Column) Loe(v any) Predicate { return compare(c, OpLoe, v) }

// Lt returns c < v.
func (c Column) Lt(v any) Predicate { return compare(c, OpLt, v) }

// Between returns c BETWEEN lo AND hi (inclusive on both ends).
func (c Column) Between(lo, hi any) Predicate {
	return Between{Expr: c, Low: lo, High: hi}
}

// In returns c IN (values...). A single *SelectQuery argument renders as an
// IN-subquery.
func (c Column) In(values ...any) Predicate {
	return In{Expr: c, Values: values}
}

// IsNull returns c IS NULL.
func (c Column) IsNull() Predicate { return NullCheck{Expr: c} }

// IsNotNull returns c IS NOT NULL.
func (c Column) IsNotNull() Predicate { return NullCheck{Expr: c, Not: true} }

// Add returns the arithmetic expression (c + v).
func (c Column) Add(v any) Expr { return Arith{Left: c, Op: "+", Right: v} }

// Asc orders by c ascending.
func (c Column) Asc() OrderSpec { return OrderSpec{Expr: c} }

// Desc orders by c descending.
func (c Column) Desc() OrderSpec { return OrderSpec{Expr: c, Desc: true} }

// param is a bound value.
type param struct{ v any }

func (p param) render(b *renderer) error {
	b.bind(p.v)
	return nil
}

// Value wraps v as a bound parameter. Plain Go values passed to predicate
// constructors are wrapped automatically; Value is only needed in select lists.
func Value(v any) Expr { return param{v: v} }

func toExpr(v any) Expr {
	switch e := v.(type) {
	case Expr:
		return e
	case *SelectQuery:
		return Subquery{Query: e}
	}
	return param{v: v}
}

// Aliased renders "expr AS alias".
type Aliased struct {
	Expr  Expr
	Alias string
}

func (a Aliased) render(b *renderer) error {
	if err := a.Expr.render(b); err != nil {
		return err
	}
	b.write(" AS " + a.Alias)
	return nil
}

// As names an expression in the select list.
func As(e Expr, alias string) Expr { return Aliased{Expr: e, Alias: alias} }

// Func is a SQL function call such as AVG(m.age).
type Func struct {
	Name string
	Args []Expr
}

func (f Func) render(b *renderer) error {
	b.write(f.Name + "(")
	if len(f.Args) == 0 {
		b.write("*")
	}
	for i, a := range f.Args {
		if i > 0 {
			b.write(", ")
		}
		if err := a.render(b); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

// CountAll is COUNT(*).
func CountAll() Expr { return Func{Name: "COUNT"} }

// Count is COUNT(e).
func Count(e Expr) Expr { return Func{Name: "COUNT", Args: []Expr{e}} }

// Sum is SUM(e).
func Sum(e Expr) Expr { return Func{Name: "SUM", Args: []Expr{e}} }

// Avg is AVG(e).
func Avg(e Expr) Expr { return Func{Name: "AVG", Args: []Expr{e}} }

// Max is MAX(e).
func Max(e Expr) Expr { return Func{Name: "MAX", Args: []Expr{e}} }

// Min is MIN(e).
func Min(e Expr) Expr { return Func{Name: "MIN", Args: []Expr{e}} }

// Replace is REPLACE(e, from, to), available on both dialects.
func Replace(e Expr, from, to any) Expr {
	return Func{Name: "REPLACE", Args: []Expr{e, toExpr(from), toExpr(to)}}
}

// Arith is a binary arithmetic or string operation.
type Arith struct {
	Left  Expr
	Op    string
	Right any
}

func (a Arith) render(b *renderer) error {
	b.write("(")
	if err := a.Left.render(b); err != nil {
		return err
	}
	b.write(" " + a.Op + " ")
	if err := toExpr(a.Right).render(b); err != nil {
		return err
	}
	b.write(")")
	return nil
}

// Concat joins string expressions with the standard || operator.
func Concat(parts ...any) Expr {
	if len(parts) == 0 {
		return Value("")
	}
	e := toExpr(parts[0])
	for _, p := range parts[1:] {
		e = Arith{Left: e, Op: "||", Right: p}
	}
	return e
}

// Cast renders CAST(e AS typ). typ is emitted verbatim and must be a
// trusted type name.
func Cast(e Expr, typ string) Expr { return castExpr{expr: e, typ: typ} }

type castExpr struct {
	expr Expr
	typ  string
}

func (c castExpr) render(b *renderer) error {
	b.write("CAST(")
	if err := c.expr.render(b); err != nil {
		return err
	}
	b.write(" AS " + c.typ + ")")
	return nil
}

// Subquery embeds a SELECT as a scalar or set expression.
type Subquery struct {
	Query *SelectQuery
}

func (s Subquery) render(b *renderer) error {
	b.write("(")
	saved := b.bare
	b.bare = nil
	err := s.Query.renderSelect(b)
	b.bare = saved
	b.write(")")
	return err
}

// Sub wraps q for use as an expression.
func Sub(q *SelectQuery) Expr { return Subquery{Query: q} }

// Case starts a searched CASE expression.
func Case() *CaseBuilder { return &CaseBuilder{} }

// CaseBuilder accumulates WHEN ... THEN arms.
type CaseBuilder struct {
	whens     []Predicate
	thens     []Expr
	otherwise Expr
}

// When adds an arm; then may be a plain value or an Expr.
func (c *CaseBuilder) When(p Predicate, then any) *CaseBuilder {
	c.whens = append(c.whens, p)
	c.thens = append(c.thens, toExpr(then))
	return c
}

// Otherwise sets the ELSE branch and returns the finished expression.
func (c *CaseBuilder) Otherwise(v any) Expr {
	c.otherwise = toExpr(v)
	return c
}

func (c *CaseBuilder) render(b *renderer) error {
	if len(c.whens) == 0 {
		return errEmptyCase
	}
	b.write("CASE")
	for i, w := range c.whens {
		b.write(" WHEN ")
		if err := w.render(b); err != nil {
			return err
		}
		b.write(" THEN ")
		if err := c.thens[i].render(b); err != nil {
			return err
		}
	}
	if c.otherwise != nil {
		b.write(" ELSE ")
		if err := c.otherwise.render(b); err != nil {
			return err
		}
	}
	b.write(" END")
	return nil
}

// renderer accumulates SQL text and bound arguments. Arguments are numbered in
// the order they are written, so subqueries share the outer numbering.
type renderer struct {
	dialect Dialect
	sb      strings.Builder
	args    []any

	// bare, when set, renders columns of that table without a qualifier
	// (UPDATE/DELETE targets).
	bare *Table
}

func (b *renderer) write(s string) { b.sb.WriteString(s) }

func (b *renderer) bind(v any) {
	b.args = append(b.args, v)
	b.sb.WriteString(b.dialect.Placeholder(len(b.args)))
}
