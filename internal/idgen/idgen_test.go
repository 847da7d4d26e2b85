package idgen

import (
	"regexp"
	"strings"
	"testing"
)

func TestRequestID_Shape(t *testing.T) {
	pattern := regexp.MustCompile(`^req-[a-zA-Z0-9]{12}$`)
	for i := 0; i < 100; i++ {
		id, err := RequestID()
		if err != nil {
			t.Fatalf("RequestID() error on iteration %d: %v", i, err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("RequestID() = %q, does not match %s", id, pattern)
		}
	}
}

func TestRequestID_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := RequestID()
		if err != nil {
			t.Fatalf("RequestID() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestAccept(t *testing.T) {
	for _, tc := range []struct {
		id   string
		want bool
	}{
		{"req-abc123", true},
		{"7f1c2d.trace_01", true},
		{"", false},
		{"has space", false},
		{"line\nbreak", false},
		{strings.Repeat("a", 65), false},
	} {
		if got := Accept(tc.id); got != tc.want {
			t.Errorf("Accept(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}
