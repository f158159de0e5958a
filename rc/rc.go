// Package rc defines the typed result codes shared by every layer of the
// query execution core: expressions, the binder, the planners and the
// operator runtime all surface failures as one of these codes rather than
// unwinding through panics or ad-hoc error strings.
package rc

import (
	"io"

	"github.com/pkg/errors"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// Code is a result code. SUCCESS (the zero value's Kind counterpart) is
// never represented as an error — operations that succeed return a nil
// error, matching Go convention, while every other Code is surfaced as an
// error created from its Kind.
type Code int

const (
	_ Code = iota
	RecordEOF
	InvalidArgument
	SchemaFieldMissing
	SchemaFieldTypeMismatch
	SchemaTableNotExist
	RecordDuplicateKey
	RecordInvalidKey
	Internal
	Unimplemented
	IOErrOpen
	IOErrWrite
	IOErrAccess
)

var names = map[Code]string{
	RecordEOF:               "record eof",
	InvalidArgument:         "invalid argument",
	SchemaFieldMissing:      "schema field missing",
	SchemaFieldTypeMismatch: "schema field type mismatch",
	SchemaTableNotExist:     "schema table not exist",
	RecordDuplicateKey:      "record duplicate key",
	RecordInvalidKey:        "record invalid key",
	Internal:                "internal error",
	Unimplemented:           "unimplemented",
	IOErrOpen:               "io error: open",
	IOErrWrite:              "io error: write",
	IOErrAccess:             "io error: access",
}

// kinds mirrors gopkg.in/src-d/go-errors.v1's registry-of-kinds pattern: one
// *errors.Kind per Code, so call sites can test `kind.Is(err)` against a
// stable, comparable sentinel per error code.
var kinds = map[Code]*goerrors.Kind{}

func init() {
	for code, msg := range names {
		kinds[code] = goerrors.NewKind(msg)
	}
}

// New builds an error for code, wrapped with a stack trace at the call
// site; a non-empty format (with args) is formatted and prepended to the
// code's name as the error message. RECORD_EOF is special-cased to io.EOF itself (not wrapped) so that
// rowexec iterators can return it directly and satisfy the idiomatic Go
// `Next` contract (`err == io.EOF` terminates iteration) while every other
// layer can still distinguish it via Is(err, RecordEOF).
func New(code Code, format string, args ...interface{}) error {
	if code == RecordEOF {
		return io.EOF
	}
	kind, ok := kinds[code]
	if !ok {
		kind = kinds[Internal]
	}
	var base error = kind.New()
	if format != "" {
		base = errors.WithMessagef(base, format, args...)
	}
	return errors.WithStack(base)
}

// Wrap prefixes an existing error's message with the code's name and msg
// and adds a stack trace, preserving the original error as the cause. It
// does not attach the code's Kind: Is(Wrap(code, err), c) reports the same
// as Is(err, c).
func Wrap(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, names[code]+": "+msg)
}

// Is reports whether err, or an error it wraps, was produced by
// New(code, ...), or is io.EOF when code is RecordEOF.
func Is(err error, code Code) bool {
	if code == RecordEOF {
		return errors.Is(err, io.EOF)
	}
	kind, ok := kinds[code]
	if !ok {
		return false
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if kind.Is(e) {
			return true
		}
	}
	return false
}

// EOF is the sentinel returned by rowexec iterators (and by row/chunk
// producers in general) when a stream is exhausted. It is identical to
// io.EOF so Go's usual `for { ...; if err == io.EOF { break } }` idiom
// works without importing this package everywhere.
var EOF = io.EOF
