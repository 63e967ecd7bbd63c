// Package errs provides error handling for mocksmith.
//
// It re-exports the parts of github.com/cockroachdb/errors the tool uses
// (wrapping with stack traces, sentinel marking, errors.Is inspection) and
// defines the error kinds surfaced to users. Each kind has a sentinel so
// callers can classify failures with errs.Is regardless of how much context
// was wrapped around them.
package errs

import (
	crdb "github.com/cockroachdb/errors"
)

// Core creation and wrapping
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
	Mark  = crdb.Mark
)

// Inspection
var (
	Is     = crdb.Is
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Error kinds. A run aborts with a non-zero exit code when any input fails
// with one of these kinds; classes without methods to mock only warn.
var (
	// ErrInputNotFound indicates a listed header path does not exist.
	ErrInputNotFound = New("input not found")

	// ErrParse indicates the parser reported a fatal diagnostic.
	ErrParse = New("parse error")

	// ErrConfig indicates an invalid option, regex or rename rule.
	ErrConfig = New("invalid configuration")

	// ErrFileSystem indicates an output directory or file could not be
	// created or written.
	ErrFileSystem = New("file system error")
)

// InputNotFound reports a missing input header with its exact path.
func InputNotFound(path string) error {
	return Mark(Newf("input file %s does not exist", path), ErrInputNotFound)
}

// ParseError reports a fatal parser diagnostic attributed to the file and
// position where it occurred, which is not necessarily the root input file.
// An empty file means the source came from stdin.
func ParseError(file string, line, column uint32, message string) error {
	if file == "" {
		return Mark(Newf("Parse error at line %d, column %d: %s", line, column, message), ErrParse)
	}
	return Mark(Newf("Parse error in %s at line %d, column %d: %s", file, line, column, message), ErrParse)
}

// ConfigError reports an invalid option or rule.
func ConfigError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrConfig)
}

// FileSystem wraps a filesystem failure with context.
func FileSystem(err error, format string, args ...interface{}) error {
	return Mark(Wrapf(err, format, args...), ErrFileSystem)
}
