package search

import (
	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/query"
)

// Predicates converts cond into one predicate per present criterion, in a
// fixed order: username, team name, lower age bound, upper age bound.
// An empty result matches every row.
func Predicates(cond model.MemberSearchCondition) []query.Predicate {
	candidates := []query.Predicate{
		usernameEq(cond.Username),
		teamNameEq(cond.TeamName),
		ageGoe(cond.AgeGoe),
		ageLoe(cond.AgeLoe),
	}
	preds := make([]query.Predicate, 0, len(candidates))
	for _, p := range candidates {
		if p != nil {
			preds = append(preds, p)
		}
	}
	return preds
}

// Each helper returns nil when its criterion is absent, so the results can
// be handed straight to Where.

func usernameEq(username string) query.Predicate {
	if !model.HasText(username) {
		return nil
	}
	return MemberUsername.Eq(username)
}

func teamNameEq(teamName string) query.Predicate {
	if !model.HasText(teamName) {
		return nil
	}
	return TeamName.Eq(teamName)
}

func ageGoe(age *int) query.Predicate {
	if age == nil {
		return nil
	}
	return MemberAge.Goe(*age)
}

func ageLoe(age *int) query.Predicate {
	if age == nil {
		return nil
	}
	return MemberAge.Loe(*age)
}
