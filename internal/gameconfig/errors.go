package gameconfig

import (
	"errors"
	"fmt"
)

// ErrNotSupported marks conversions the flat-text parser refuses to do.
// Struct and enum values can only be built programmatically or from JSON.
var ErrNotSupported = errors.New("not supported")

// SchemaError reports an integrity failure in a metadata schema. These are
// fatal at load or import time: running with an inconsistent type universe is
// worse than refusing to start.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Msg
}

func schemaErrorf(format string, args ...interface{}) error {
	return &SchemaError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports raw text that does not match its declared type.
// Recoverable per-entry during bulk INI import; fatal during explicit edits.
type ParseError struct {
	Raw  string
	Type ValueType
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %q as %s: %v", e.Raw, e.Type, e.Err)
	}
	return fmt.Sprintf("cannot parse %q as %s", e.Raw, e.Type)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a config entry with no matching schema entry.
// Fatal for command-line generation: a missing mapping usually means a
// corrupt or version-mismatched profile.
type ResolutionError struct {
	Name     string
	Location Location
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no schema entry for %s [%s]", e.Name, e.Location)
}
