// ta-fuzz: grammar-driven fuzzer core for TEE trusted applications

package tafuzz

import "errors"

// ErrEndOfInput is returned when the Cursor runs out of bytes. It is the
// normal terminator of a test case: the Dispatcher treats it as success.
var ErrEndOfInput = errors.New("tafuzz: end of input")

// ErrFailedToCreateObject is returned when a constructor thunk's call into
// the target returned an application-level error. It aborts the current
// API session.
var ErrFailedToCreateObject = errors.New("tafuzz: failed to create object")

// ErrInvalidObjectType is returned when an Object's tag does not match the
// Api a thunk belongs to. It indicates a cache/grammar bug, or an
// assign-self member that previously poisoned the receiver.
var ErrInvalidObjectType = errors.New("tafuzz: object is of invalid type")

// ErrEmptySliceNoChoice is returned by SliceChoice when asked to choose an
// element from an empty slice (a model with no constructors or members).
var ErrEmptySliceNoChoice = errors.New("tafuzz: no choice, slice is empty")

// ErrUTF8Decoding is returned when a Str expression reads bytes that are not
// valid UTF-8.
var ErrUTF8Decoding = errors.New("tafuzz: invalid utf-8")

// errRandomVectorUnimplemented is returned at model-compile time by a
// Target that references RandomVector anywhere in its grammar: it has no
// forward rule, so it is rejected up front rather than left to fail at
// fuzz time.
var errRandomVectorUnimplemented = errors.New("tafuzz: RandomVector has no forward rule, rejected at model-compile time")

// errUnreversibleExpression is returned by the Encoder when asked to emit
// bytes for a grammar node with no reverse rule (OneOf, Eval, Var).
var errUnreversibleExpression = errors.New("tafuzz: expression has no reverse rule")
