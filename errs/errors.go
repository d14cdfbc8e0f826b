// Package errs defines the error kinds shared by every layer of the DSTU 4145
// implementation.
//
// Each ErrorKind belongs to exactly one Class. Configuration errors come from
// bad or unknown curve definitions, input errors from malformed caller data,
// and invariant errors indicate corrupted curve parameters or a bug in the
// field arithmetic. Transient conditions (degenerate random samples) never
// surface as errors.
package errs

// Class groups error kinds by who is expected to act on them.
type Class int

const (
	// ClassConfiguration is returned for curve definitions that can not be
	// used. These are fatal and are not retried.
	ClassConfiguration Class = iota

	// ClassInput is returned for malformed caller data.
	ClassInput

	// ClassInvariant is returned when an internal consistency check fails.
	// Valid curves never produce it.
	ClassInvariant
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassConfiguration:
		return "ConfigurationError"
	case ClassInput:
		return "InputError"
	case ClassInvariant:
		return "InvariantViolation"
	}
	return "UnknownClass"
}

// ErrorKind identifies a kind of error. It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrEvenDegree is returned when the extension degree of a curve is
	// even. The half-trace quadratic solver only works for odd degrees.
	ErrEvenDegree = ErrorKind("ErrEvenDegree")

	// ErrInvalidParams is returned when curve parameters are present but
	// inconsistent, such as a base point that is not on the curve.
	ErrInvalidParams = ErrorKind("ErrInvalidParams")

	// ErrIncompleteParams is returned when a required curve parameter is
	// missing.
	ErrIncompleteParams = ErrorKind("ErrIncompleteParams")

	// ErrUnknownCurve is returned when a standard curve identifier is not
	// known.
	ErrUnknownCurve = ErrorKind("ErrUnknownCurve")

	// ErrZeroHash is returned when the digest passed to signing decodes to
	// the zero field element.
	ErrZeroHash = ErrorKind("ErrZeroHash")

	// ErrInvalidPrivateKey is returned for private key encodings that do not
	// decode to a scalar in [1, order).
	ErrInvalidPrivateKey = ErrorKind("ErrInvalidPrivateKey")

	// ErrInvalidPublicKey is returned for public key encodings that are
	// malformed or decode to a point that is not on the curve.
	ErrInvalidPublicKey = ErrorKind("ErrInvalidPublicKey")

	// ErrPointNotOnCurve is returned when a decoded point fails the curve
	// membership check.
	ErrPointNotOnCurve = ErrorKind("ErrPointNotOnCurve")

	// ErrUnknownPeerFormat is returned by key agreement when the peer key is
	// given in an unsupported form.
	ErrUnknownPeerFormat = ErrorKind("ErrUnknownPeerFormat")

	// ErrUnknownFormat is returned when an encoding format selector is not
	// one of the supported values.
	ErrUnknownFormat = ErrorKind("ErrUnknownFormat")

	// ErrInvalidSignature is returned when a signature encoding is
	// malformed.
	ErrInvalidSignature = ErrorKind("ErrInvalidSignature")

	// ErrRandomSource is returned when the random source fails to deliver
	// the requested bytes.
	ErrRandomSource = ErrorKind("ErrRandomSource")

	// ErrAttemptsExhausted is returned when a sampling loop with an explicit
	// attempt cap runs out of attempts. Production callers leave the cap
	// unset and never see it.
	ErrAttemptsExhausted = ErrorKind("ErrAttemptsExhausted")

	// ErrCurveMismatch is the panic value used when points or keys from
	// different curves are combined.
	ErrCurveMismatch = ErrorKind("ErrCurveMismatch")

	// ErrQuadraticSolve is returned when the half-trace solution of
	// z^2 + z = v does not verify.
	ErrQuadraticSolve = ErrorKind("ErrQuadraticSolve")
)

var classes = map[ErrorKind]Class{
	ErrEvenDegree:        ClassConfiguration,
	ErrInvalidParams:     ClassConfiguration,
	ErrIncompleteParams:  ClassConfiguration,
	ErrUnknownCurve:      ClassConfiguration,
	ErrZeroHash:          ClassInput,
	ErrInvalidPrivateKey: ClassInput,
	ErrInvalidPublicKey:  ClassInput,
	ErrPointNotOnCurve:   ClassInput,
	ErrUnknownPeerFormat: ClassInput,
	ErrUnknownFormat:     ClassInput,
	ErrInvalidSignature:  ClassInput,
	ErrRandomSource:      ClassInput,
	ErrAttemptsExhausted: ClassInput,
	ErrCurveMismatch:     ClassInvariant,
	ErrQuadraticSolve:    ClassInvariant,
}

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Class returns the class of the error kind.
func (e ErrorKind) Class() Class {
	if c, ok := classes[e]; ok {
		return c
	}
	return ClassInvariant
}

// Error identifies an error related to DSTU 4145 curves, keys and signatures.
// It has full support for errors.Is and errors.As, so the caller can
// ascertain the specific reason for the error by checking the underlying
// error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// Class returns the class of the wrapped kind, or ClassInvariant when the
// wrapped error is not an ErrorKind.
func (e Error) Class() Class {
	if kind, ok := e.Err.(ErrorKind); ok {
		return kind.Class()
	}
	return ClassInvariant
}

// New creates an Error given a set of arguments.
func New(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
