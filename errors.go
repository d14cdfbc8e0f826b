package dstu4145

import "github.com/rafaelescrich/go-dstu4145/errs"

// Error is the error type returned by every package of the module.
type Error = errs.Error

// ErrorKind identifies a kind of error.
type ErrorKind = errs.ErrorKind

// Error kinds, re-exported so callers of the root package can match them
// with errors.Is without importing errs.
const (
	ErrEvenDegree        = errs.ErrEvenDegree
	ErrInvalidParams     = errs.ErrInvalidParams
	ErrIncompleteParams  = errs.ErrIncompleteParams
	ErrUnknownCurve      = errs.ErrUnknownCurve
	ErrZeroHash          = errs.ErrZeroHash
	ErrInvalidPrivateKey = errs.ErrInvalidPrivateKey
	ErrInvalidPublicKey  = errs.ErrInvalidPublicKey
	ErrPointNotOnCurve   = errs.ErrPointNotOnCurve
	ErrUnknownPeerFormat = errs.ErrUnknownPeerFormat
	ErrUnknownFormat     = errs.ErrUnknownFormat
	ErrInvalidSignature  = errs.ErrInvalidSignature
	ErrRandomSource      = errs.ErrRandomSource
	ErrAttemptsExhausted = errs.ErrAttemptsExhausted
	ErrCurveMismatch     = errs.ErrCurveMismatch
	ErrQuadraticSolve    = errs.ErrQuadraticSolve
)
