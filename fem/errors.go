// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/io"

// ConfigurationError indicates a request for an entity that was never
// registered: a variable, system or tag name unknown to the problem.
type ConfigurationError struct {
	Kind string // kind of entity; e.g. "variable", "vector tag"
	Name string // requested name
}

// Error returns the error message
func (e *ConfigurationError) Error() string {
	return io.Sf("%s %q is not defined", e.Kind, e.Name)
}

// InvariantViolation indicates a call sequence that breaks a structural
// precondition; e.g. accumulating element contributions before preparing
// the assembly, or updating geometry from a non-serialised solution.
type InvariantViolation struct {
	Msg string
}

// Error returns the error message
func (e *InvariantViolation) Error() string {
	return e.Msg
}

// confErr returns a new ConfigurationError
func confErr(kind, name string) error {
	return &ConfigurationError{kind, name}
}

// invErr returns a new InvariantViolation with a formatted message
func invErr(msg string, prm ...interface{}) error {
	return &InvariantViolation{io.Sf(msg, prm...)}
}
