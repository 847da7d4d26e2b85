package model

import (
	"fmt"
	"math"
	"strings"
)

// Sortable properties of the member/team projection.
const (
	SortID       = "id"
	SortUsername = "username"
	SortAge      = "age"
	SortTeamName = "teamName"
)

var sortProperties = map[string]bool{
	SortID:       true,
	SortUsername: true,
	SortAge:      true,
	SortTeamName: true,
}

// SortOrder is one sort key of a page request.
type SortOrder struct {
	Property string `json:"property"`
	Desc     bool   `json:"desc,omitempty"`
}

// ParseSortOrder parses "property" or "property,asc|desc".
func ParseSortOrder(s string) (SortOrder, error) {
	prop, dir, _ := strings.Cut(s, ",")
	o := SortOrder{Property: strings.TrimSpace(prop)}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		o.Desc = true
	default:
		return SortOrder{}, fmt.Errorf("invalid sort direction %q", dir)
	}
	return o, nil
}

// String formats o as "property,asc|desc".
func (o SortOrder) String() string {
	if o.Desc {
		return o.Property + ",desc"
	}
	return o.Property + ",asc"
}

// PageRequest selects one page of a result. Index is zero-based.
type PageRequest struct {
	Index int         `json:"page"`
	Size  int         `json:"size"`
	Sort  []SortOrder `json:"sort,omitempty"`
}

const (
	// DefaultPageSize is used when a caller does not choose a size.
	DefaultPageSize = 20
	// MaxPageSize bounds a single page.
	MaxPageSize = 1000
)

// Offset returns the number of rows before the page. Validate guarantees
// the product fits in an int.
func (p PageRequest) Offset() int {
	return p.Index * p.Size
}

// Validate checks index, size and sort properties.
func (p PageRequest) Validate() error {
	var ve ValidationError
	if p.Index < 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "page", Message: fmt.Sprintf("must be 0 or greater, got %d", p.Index)})
	}
	switch {
	case p.Size < 1:
		ve.Errors = append(ve.Errors, FieldError{Field: "size", Message: fmt.Sprintf("must be 1 or greater, got %d", p.Size)})
	case p.Size > MaxPageSize:
		ve.Errors = append(ve.Errors, FieldError{Field: "size", Message: fmt.Sprintf("must be %d or less, got %d", MaxPageSize, p.Size)})
	case p.Index > math.MaxInt/p.Size:
		ve.Errors = append(ve.Errors, FieldError{Field: "page", Message: fmt.Sprintf("offset of page %d overflows", p.Index)})
	}
	for _, o := range p.Sort {
		if !sortProperties[o.Property] {
			ve.Errors = append(ve.Errors, FieldError{Field: "sort", Message: fmt.Sprintf("unknown property %q", o.Property)})
		}
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// Page is one slice of a larger result.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"total_elements"`
	PageIndex     int   `json:"page"`
	PageSize      int   `json:"size"`
}

// TotalPages returns the number of pages needed for TotalElements.
func (p *Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 1
	}
	size := int64(p.PageSize)
	pages := p.TotalElements / size
	if p.TotalElements%size != 0 {
		pages++
	}
	return int(pages)
}

// HasNext reports whether a page follows this one.
func (p *Page[T]) HasNext() bool {
	return p.PageIndex < p.TotalPages()-1
}

// IsLast reports whether this is the final page.
func (p *Page[T]) IsLast() bool {
	return !p.HasNext()
}
