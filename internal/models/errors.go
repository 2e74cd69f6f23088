package models

import "errors"

// Sentinel errors for the rendering pipeline. Callers match them with
// errors.Is; every failure is terminal for the render call that raised it.
var (
	// ErrMalformedPayload means a required field was structurally absent
	// from a leaf result object. A present-but-null result flag is not
	// malformed; it maps to OutcomeUnknown.
	ErrMalformedPayload = errors.New("malformed result payload")

	// ErrUnknownClientKind means the caller supplied an unsupported
	// payload shape discriminator.
	ErrUnknownClientKind = errors.New("unknown client kind")

	// ErrInvalidConfiguration means a non-positive bar size or an
	// unsupported glyph set token was supplied.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidUnit means an unrecognized duration unit token was
	// supplied to the converter.
	ErrInvalidUnit = errors.New("invalid time unit")

	// ErrReportTooDeep means payload nesting exceeded the recursion
	// ceiling.
	ErrReportTooDeep = errors.New("report nesting too deep")
)
