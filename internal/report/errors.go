package report

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches errors that make a report unusable at startup.
	ErrConfiguration = errors.New("report configuration error")
	// ErrMalformedLine matches lines that do not parse as path, size, count.
	ErrMalformedLine = errors.New("malformed report line")

	errEmptyReport = errors.New("report appears to be empty")
)

// ConfigError is returned by Open when the report is missing, unreadable or
// has no line beginning with "/".
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("report %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// MalformedLineError describes a report line that was skipped.
type MalformedLineError struct {
	Line   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed line %q: %s", e.Line, e.Reason)
}

func (e *MalformedLineError) Is(target error) bool { return target == ErrMalformedLine }
