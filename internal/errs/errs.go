// Package errs defines the error taxonomy shared by the build-lod pipeline.
package errs

import "github.com/pkg/errors"

// Kind classifies an error by how the CLI driver should react to it.
type Kind int

const (
	// Config covers bad flags or bad numeric arguments. Fatal to the run.
	Config Kind = iota
	// Decode covers a malformed RAD stream: bad magic, bad meta JSON,
	// an offset mismatch, or an unsupported version. Aborts one file.
	Decode
	// Validation covers non-finite splat fields found during pre-scan.
	// Aborts one file.
	Validation
	// IO covers file open/read/write failures. Aborts one file.
	IO
	// Internal covers invariant violations inside the builder (e.g. a
	// permutation length mismatch). Propagated as a program abort.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "ConfigError"
	case Decode:
		return "DecodeError"
	case Validation:
		return "ValidationError"
	case IO:
		return "IoError"
	case Internal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// Error wraps a cause with a Kind so callers can branch on taxonomy while
// still getting a pkg/errors stack trace from Cause.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New wraps cause with errors.WithStack under the given Kind.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: errors.WithStack(cause)}
}

// Wrap annotates cause with a message and tags it with Kind.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Cause: errors.Wrap(cause, msg)}
}

// Wrapf annotates cause with a formatted message and tags it with Kind.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Cause: errors.Wrapf(cause, format, args...)}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// PerFile reports whether an error of this Kind should abort only the
// current input file (true) rather than the whole program (false).
func PerFile(kind Kind) bool {
	return kind == Decode || kind == Validation || kind == IO
}
