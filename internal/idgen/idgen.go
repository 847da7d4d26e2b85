// Package idgen generates request identifiers.
package idgen

import (
	"fmt"
	"regexp"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RequestPrefix marks IDs minted by this service.
const RequestPrefix = "req-"

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	length   = 12
	// maxLen bounds IDs accepted from callers.
	maxLen = 64
)

var acceptable = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// RequestID returns a new request identifier such as "req-4fZk0aP9xQ2m".
func RequestID() (string, error) {
	id, err := nanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return RequestPrefix + id, nil
}

// Accept reports whether a caller-supplied ID may be echoed back and logged.
func Accept(id string) bool {
	return id != "" && len(id) <= maxLen && acceptable.MatchString(id)
}
