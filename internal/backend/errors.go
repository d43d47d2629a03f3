// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "fmt"

// ParseError is returned when text does not match any backend grammar.
type ParseError struct {
	// Input is the text as given, before normalization.
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse %q into a computation backend", e.Input)
}

// IncomparableError is returned when two backends from different GPU
// families are ordered against each other.
type IncomparableError struct {
	Left  Kind
	Right Kind
}

func (e *IncomparableError) Error() string {
	return fmt.Sprintf("refusing to order a %s and a %s computation backend", e.Left, e.Right)
}
