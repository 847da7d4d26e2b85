package search

import (
	"fmt"

	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/query"
)

// Projection is the flattened member/team row, in ScanMemberTeam order.
func Projection() []query.Expr {
	return []query.Expr{
		query.As(MemberID, "member_id"),
		MemberUsername,
		MemberAge,
		query.As(TeamID, "team_id"),
		query.As(TeamName, "team_name"),
	}
}

// base is the unordered, unpaged search query. The team join is a left join
// so members without a team are kept.
func base(cond model.MemberSearchCondition) *query.SelectQuery {
	return query.Select(Projection()...).
		From(Member).
		LeftJoin(Team, MemberTeamJoin()).
		Where(Predicates(cond)...)
}

// ContentQuery builds the search query ordered by sort. Without sort keys
// the rows come back in member id order.
func ContentQuery(cond model.MemberSearchCondition, sort []model.SortOrder) (*query.SelectQuery, error) {
	specs, err := orderSpecs(sort)
	if err != nil {
		return nil, err
	}
	return base(cond).OrderBy(specs...), nil
}

// PageQuery builds the content query for one page.
func PageQuery(cond model.MemberSearchCondition, page model.PageRequest) (*query.SelectQuery, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	q, err := ContentQuery(cond, page.Sort)
	if err != nil {
		return nil, err
	}
	return q.Offset(page.Offset()).Limit(page.Size), nil
}

// CountQuery counts the rows cond matches, over the same relations and
// filters as the content query.
func CountQuery(cond model.MemberSearchCondition) *query.SelectQuery {
	return base(cond).CountQuery()
}

// orderSpecs maps sort properties onto columns and appends the member id as
// a tie-breaker so pages never overlap.
func orderSpecs(sort []model.SortOrder) ([]query.OrderSpec, error) {
	specs := make([]query.OrderSpec, 0, len(sort)+1)
	byID := false
	for _, o := range sort {
		var spec query.OrderSpec
		switch o.Property {
		case model.SortID:
			spec = MemberID.Asc()
			byID = true
		case model.SortUsername:
			spec = MemberUsername.Asc().WithNullsLast()
		case model.SortAge:
			spec = MemberAge.Asc()
		case model.SortTeamName:
			spec = TeamName.Asc().WithNullsLast()
		default:
			return nil, &model.ValidationError{Errors: []model.FieldError{{
				Field:   "sort",
				Message: fmt.Sprintf("unknown property %q", o.Property),
			}}}
		}
		spec.Desc = o.Desc
		specs = append(specs, spec)
	}
	if !byID {
		specs = append(specs, MemberID.Asc())
	}
	return specs, nil
}
