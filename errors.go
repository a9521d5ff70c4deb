// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipegen

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the errors returned while building or elaborating a
// component.
//
type ErrorKind int

// Error kinds.
//
const (
	_ ErrorKind = iota
	// InvalidDelay is returned for register delays < 1.
	InvalidDelay
	// IndexOutOfRange is returned for bit indices or ranges outside of an
	// operand's width.
	IndexOutOfRange
	// NoOutputs is returned when elaborating a component with no outputs.
	NoOutputs
	// CrossComponentReference is returned when a signal is used with a
	// component other than the one it was built in.
	CrossComponentReference
	// UnsupportedOperandShape is returned for operands with an unexpected
	// width or value, like a multi-bit select condition.
	UnsupportedOperandShape
	// InvalidWidth is returned for non-positive widths or constants that do
	// not fit in their declared width.
	InvalidWidth
	// InvalidName is returned for port or module names that are not valid
	// identifiers or that are already in use.
	InvalidName
)

var kindNames = [...]string{
	InvalidDelay:            "invalid delay",
	IndexOutOfRange:         "index out of range",
	NoOutputs:               "no outputs",
	CrossComponentReference: "cross component reference",
	UnsupportedOperandShape: "unsupported operand shape",
	InvalidWidth:            "invalid width",
	InvalidName:             "invalid name",
}

func (k ErrorKind) String() string {
	if k <= 0 || int(k) >= len(kindNames) {
		return "ErrorKind(" + fmt.Sprint(int(k)) + ")"
	}
	return kindNames[k]
}

// Error is the error type returned by graph construction and elaboration calls.
//
// Op is the name of the offending call (operator name, "Register", "Output", ...)
// and Detail gives the operand widths/offsets or names involved.
//
type Error struct {
	Kind   ErrorKind
	Op     string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Detail
}

func newError(k ErrorKind, op string, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: k, Op: op, Detail: fmt.Sprintf(format, args...)})
}

// Errorf returns an *Error of the given kind for the operation op. It is
// meant for circuit libraries built on top of this package.
//
func Errorf(k ErrorKind, op string, format string, args ...interface{}) error {
	return newError(k, op, format, args...)
}

// IsKind returns true if the cause of err is an *Error of the given kind.
//
func IsKind(err error, k ErrorKind) bool {
	e, ok := errors.Cause(err).(*Error)
	return ok && e.Kind == k
}
