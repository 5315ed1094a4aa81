// Package enums holds the closed string vocabularies stored in postgres enum
// columns and accepted over the API.
package enums

import (
	"fmt"
	"slices"
	"strings"
)

// valueSet is the closed list of values one enum type accepts.
type valueSet[T ~string] struct {
	kind   string
	values []T
}

func newValueSet[T ~string](kind string, values ...T) valueSet[T] {
	return valueSet[T]{kind: kind, values: values}
}

func (s valueSet[T]) has(v T) bool {
	return slices.Contains(s.values, v)
}

// parse is case-insensitive and ignores surrounding whitespace.
func (s valueSet[T]) parse(raw string) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	if s.has(v) {
		return v, nil
	}
	names := make([]string, len(s.values))
	for i, value := range s.values {
		names[i] = string(value)
	}
	return "", fmt.Errorf("invalid %s %q, expected one of %s", s.kind, raw, strings.Join(names, ", "))
}
