package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one line of a report: a path with its cumulative size in bytes
// and the number of entries at or below it.
type Entry struct {
	Name  string
	Path  string
	Size  int64
	Count int64
}

// ParseLine parses "<absolute-path> <size> <count>".
func ParseLine(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Entry{}, &MalformedLineError{Line: line, Reason: fmt.Sprintf("expected 3 fields, got %d", len(fields))}
	}

	path := fields[0]
	if !strings.HasPrefix(path, "/") {
		return Entry{}, &MalformedLineError{Line: line, Reason: "path is not absolute"}
	}

	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || size < 0 {
		return Entry{}, &MalformedLineError{Line: line, Reason: "invalid size " + strconv.Quote(fields[1])}
	}

	count, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || count < 0 {
		return Entry{}, &MalformedLineError{Line: line, Reason: "invalid count " + strconv.Quote(fields[2])}
	}

	return Entry{
		Name:  Base(path),
		Path:  path,
		Size:  size,
		Count: count,
	}, nil
}

// FormatLine renders an entry in the report line format.
func FormatLine(e Entry) string {
	return e.Path + " " + strconv.FormatInt(e.Size, 10) + " " + strconv.FormatInt(e.Count, 10)
}

// Parent returns p up to but excluding its final segment. The parent of a
// top-level path, and of "/" itself, is "/".
//
// No cleaning is done: paths are compared exactly as they appear in the
// report.
func Parent(p string) string {
	i := strings.LastIndexByte(p, '/')
	switch {
	case i < 0:
		return ""
	case i == 0:
		return "/"
	default:
		return p[:i]
	}
}

// Base returns the final segment of p.
func Base(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}
