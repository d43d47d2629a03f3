// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"encoding/json"
	"slices"
	"strings"
)

// Set is an unordered collection of backends keyed by local specifier.
// The zero value is an empty set ready to use.
type Set struct {
	items map[string]Backend
}

// NewSet returns a set holding the given backends.
func NewSet(backends ...Backend) Set {
	var s Set
	s.Add(backends...)
	return s
}

// Add inserts backends. A backend whose specifier is already present is ignored.
func (s *Set) Add(backends ...Backend) {
	if s.items == nil {
		s.items = make(map[string]Backend, len(backends))
	}
	for _, b := range backends {
		key := b.Specifier()
		if _, ok := s.items[key]; !ok {
			s.items[key] = b
		}
	}
}

// Contains reports whether a backend with the same specifier is present.
func (s Set) Contains(b Backend) bool {
	_, ok := s.items[b.Specifier()]
	return ok
}

// ContainsSpecifier reports whether spec is exactly one of the specifiers.
func (s Set) ContainsSpecifier(spec string) bool {
	_, ok := s.items[spec]
	return ok
}

// Len returns the number of distinct backends.
func (s Set) Len() int {
	return len(s.items)
}

// Equal reports whether both sets hold the same specifiers.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for key := range s.items {
		if _, ok := other.items[key]; !ok {
			return false
		}
	}
	return true
}

// Specifiers returns the specifiers in lexical order.
func (s Set) Specifiers() []string {
	out := make([]string, 0, len(s.items))
	for key := range s.items {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}

// Backends returns the members in lexical specifier order.
//
// The order is for stable output only; use Sort on a single-family slice
// when version order matters.
func (s Set) Backends() []Backend {
	keys := s.Specifiers()
	out := make([]Backend, len(keys))
	for i, key := range keys {
		out[i] = s.items[key]
	}
	return out
}

// OfKind returns the members of one family in lexical specifier order.
func (s Set) OfKind(kind Kind) []Backend {
	var out []Backend
	for _, b := range s.Backends() {
		if b.Kind() == kind {
			out = append(out, b)
		}
	}
	return out
}

// String renders the set as "{cpu, cu118, ...}".
func (s Set) String() string {
	return "{" + strings.Join(s.Specifiers(), ", ") + "}"
}

// MarshalJSON encodes the set as a sorted array of specifiers.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Specifiers())
}

// UnmarshalJSON decodes an array of backend identifiers.
func (s *Set) UnmarshalJSON(data []byte) error {
	var specs []string
	if err := json.Unmarshal(data, &specs); err != nil {
		return err
	}
	parsed, err := ParseAll(specs)
	if err != nil {
		return err
	}
	*s = NewSet(parsed...)
	return nil
}

// ParseAll parses every entry, stopping at the first failure.
func ParseAll(specs []string) ([]Backend, error) {
	out := make([]Backend, 0, len(specs))
	for _, spec := range specs {
		b, err := Parse(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
