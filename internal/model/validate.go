package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

const maxNameLen = 100

// ValidateMember checks a Member before it is written.
// It returns a *ValidationError if any rules fail, or nil if the member is valid.
func ValidateMember(m *Member) error {
	var ve ValidationError

	// Username is optional, but bounded when present.
	if len([]rune(m.Username)) > maxNameLen {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "username",
			Message: fmt.Sprintf("must be %d characters or fewer", maxNameLen),
		})
	}

	if m.TeamID != nil && *m.TeamID <= 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "team_id",
			Message: "must reference an existing team",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateTeam checks a Team before it is written.
func ValidateTeam(t *Team) error {
	var ve ValidationError

	name := strings.TrimSpace(t.Name)
	if name == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	} else if len([]rune(name)) > maxNameLen {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "name",
			Message: fmt.Sprintf("must be %d characters or fewer", maxNameLen),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
