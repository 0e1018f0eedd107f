package domain

import (
	"errors"
	"fmt"
)

// Common domain errors raised by the alignment and rating stages.
var (
	// ErrEngineFinalized indicates that a mutation was attempted on a
	// rating engine that has already reached its terminal state.
	ErrEngineFinalized = errors.New("rating engine is finalized")

	// ErrUnknownGenerator indicates that a verdict referenced a generator
	// outside the fixed set established during alignment. This is a
	// programming-logic error, not a data error.
	ErrUnknownGenerator = errors.New("unknown generator")

	// ErrNoOverlap indicates that alignment produced no scenario shared by
	// at least two generators, leaving nothing to compare.
	ErrNoOverlap = errors.New("no scenario shared by two or more generators")
)

// DuplicateKeyError reports a scenario key that appeared more than once
// within a single generator's record list. Duplicate keys make alignment
// ambiguous, so this error is fatal and aborts the run before any judge
// call is issued.
type DuplicateKeyError struct {
	// Generator is the generator whose records contain the duplicate.
	Generator GeneratorID

	// ScenarioKey is the offending key.
	ScenarioKey string
}

// Error implements the error interface for DuplicateKeyError.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate scenario key %q in generator %q", e.ScenarioKey, e.Generator)
}

// NewDuplicateKeyError creates a DuplicateKeyError for the given generator
// and scenario key.
func NewDuplicateKeyError(gen GeneratorID, key string) *DuplicateKeyError {
	return &DuplicateKeyError{Generator: gen, ScenarioKey: key}
}
