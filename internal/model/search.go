package model

import (
	"errors"
	"strings"
)

// ErrInvalidCriteria is reserved for rejecting search criteria. Every
// combination of criteria is currently accepted.
var ErrInvalidCriteria = errors.New("invalid search criteria")

// MemberSearchCondition holds optional member search criteria. Blank
// strings and nil pointers impose no constraint; a zero age is a real bound.
type MemberSearchCondition struct {
	Username string `json:"username,omitempty"`
	TeamName string `json:"team_name,omitempty"`
	AgeGoe   *int   `json:"age_goe,omitempty"`
	AgeLoe   *int   `json:"age_loe,omitempty"`
}

// IsEmpty reports whether no criterion is present.
func (c MemberSearchCondition) IsEmpty() bool {
	return !HasText(c.Username) && !HasText(c.TeamName) && c.AgeGoe == nil && c.AgeLoe == nil
}

// HasText reports whether s contains a non-whitespace character.
func HasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// CountStrategy selects how a paged search computes its total.
type CountStrategy string

const (
	// CountSimple always issues the count query.
	CountSimple CountStrategy = "simple"
	// CountOptimized skips the count query when the first page is short.
	CountOptimized CountStrategy = "optimized"
)

// IsValid reports whether s is a known strategy.
func (s CountStrategy) IsValid() bool {
	switch s {
	case CountSimple, CountOptimized:
		return true
	}
	return false
}

// ParseCountStrategy maps a name to a strategy; empty means simple.
func ParseCountStrategy(s string) (CountStrategy, error) {
	if s == "" {
		return CountSimple, nil
	}
	cs := CountStrategy(strings.ToLower(s))
	if !cs.IsValid() {
		return "", &ValidationError{Errors: []FieldError{{Field: "strategy", Message: "must be simple or optimized"}}}
	}
	return cs, nil
}
