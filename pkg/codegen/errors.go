package codegen

import (
	"errors"
	"fmt"

	"rjit/pkg/syntax"
)

var (
	// ErrUnsupportedConstruct matches any *UnsupportedConstructError.
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	// ErrInvariantViolation matches any *InvariantError.
	ErrInvariantViolation = errors.New("internal invariant violation")
)

// UnsupportedConstructError reports a syntax form the generator does not
// lower. It is a user-facing limitation, not a defect.
type UnsupportedConstructError struct {
	Kind syntax.Kind
	Loc  syntax.Location
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("%s: unsupported construct %s", e.Loc, e.Kind)
}

func (e *UnsupportedConstructError) Is(target error) bool {
	return target == ErrUnsupportedConstruct
}

// InvariantError reports a tree the generator should never have been
// given, such as an unresolved identifier or a class declaration in
// statement position. It points at a defect upstream.
type InvariantError struct {
	Kind   syntax.Kind
	Loc    syntax.Location
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: internal invariant violation at %s: %s", e.Loc, e.Kind, e.Reason)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// Unsupported builds the error for a node the generator cannot lower.
func Unsupported(n syntax.Node) error {
	return &UnsupportedConstructError{Kind: n.Kind(), Loc: n.Pos()}
}

func invariant(n syntax.Node, format string, args ...any) error {
	e := &InvariantError{Reason: fmt.Sprintf(format, args...)}
	if !syntax.IsNil(n) {
		e.Kind = n.Kind()
		e.Loc = n.Pos()
	}
	return e
}
