package query

// Predicate is a boolean condition usable in WHERE, ON, HAVING and CASE arms.
//
// Predicate types:
//   - Compare: expr <op> value
//   - Between: expr BETWEEN low AND high
//   - In: expr IN (values) or expr IN (subquery)
//   - NullCheck: expr IS [NOT] NULL
//   - And / Or: conjunction / disjunction (nil members are skipped)
//   - Not: negation
type Predicate interface {
	Expr
	predicateNode()
}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpNe  Op = "<>"
	OpGoe Op = ">="
	OpGt  Op = ">"
	OpLoe Op = "<="
	OpLt  Op = "<"
)

// Compare is a binary comparison. Right is an Expr or a bound value.
type Compare struct {
	Left  Expr
	Op    Op
	Right any
}

func compare(left Expr, op Op, right any) Predicate {
	return Compare{Left: left, Op: op, Right: right}
}

func (Compare) predicateNode() {}

func (c Compare) render(b *renderer) error {
	if err := c.Left.render(b); err != nil {
		return err
	}
	b.write(" " + string(c.Op) + " ")
	return toExpr(c.Right).render(b)
}

// Between is an inclusive range check.
type Between struct {
	Expr Expr
	Low  any
	High any
}

func (Between) predicateNode() {}

func (p Between) render(b *renderer) error {
	if err := p.Expr.render(b); err != nil {
		return err
	}
	b.write(" BETWEEN ")
	if err := toExpr(p.Low).render(b); err != nil {
		return err
	}
	b.write(" AND ")
	return toExpr(p.High).render(b)
}

// In is a membership test against a value list or a single subquery.
type In struct {
	Expr   Expr
	Values []any
}

func (In) predicateNode() {}

func (p In) render(b *renderer) error {
	if len(p.Values) == 0 {
		return errEmptyIn
	}
	if err := p.Expr.render(b); err != nil {
		return err
	}
	b.write(" IN ")
	if len(p.Values) == 1 {
		if q, ok := p.Values[0].(*SelectQuery); ok {
			return Subquery{Query: q}.render(b)
		}
	}
	b.write("(")
	for i, v := range p.Values {
		if i > 0 {
			b.write(", ")
		}
		if err := toExpr(v).render(b); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

// NullCheck is IS NULL / IS NOT NULL.
type NullCheck struct {
	Expr Expr
	Not  bool
}

func (NullCheck) predicateNode() {}

func (p NullCheck) render(b *renderer) error {
	if err := p.Expr.render(b); err != nil {
		return err
	}
	if p.Not {
		b.write(" IS NOT NULL")
	} else {
		b.write(" IS NULL")
	}
	return nil
}

// And is a conjunction. An And with no members is vacuously true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

func (p And) render(b *renderer) error {
	return renderJunction(b, p.Predicates, " AND ")
}

// Or is a disjunction. An Or with no members is false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

func (p Or) render(b *renderer) error {
	preds := compact(p.Predicates)
	if len(preds) == 0 {
		b.write("1 = 0")
		return nil
	}
	return renderJunction(b, preds, " OR ")
}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

func (p Not) render(b *renderer) error {
	b.write("NOT (")
	if err := p.Predicate.render(b); err != nil {
		return err
	}
	b.write(")")
	return nil
}

// AllOf combines predicates with AND, dropping nil members. It returns nil
// when nothing remains, so the result can itself be passed to Where.
func AllOf(preds ...Predicate) Predicate {
	preds = compact(preds)
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return And{Predicates: preds}
}

// AnyOf combines predicates with OR, dropping nil members.
func AnyOf(preds ...Predicate) Predicate {
	preds = compact(preds)
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return Or{Predicates: preds}
}

// compact drops nil predicates, keeping order.
func compact(preds []Predicate) []Predicate {
	out := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func renderJunction(b *renderer, preds []Predicate, sep string) error {
	preds = compact(preds)
	if len(preds) == 0 {
		b.write("1 = 1")
		return nil
	}
	if len(preds) == 1 {
		return preds[0].render(b)
	}
	for i, p := range preds {
		if i > 0 {
			b.write(sep)
		}
		_, nested := p.(And)
		_, nestedOr := p.(Or)
		if nested || nestedOr {
			b.write("(")
		}
		if err := p.render(b); err != nil {
			return err
		}
		if nested || nestedOr {
			b.write(")")
		}
	}
	return nil
}
