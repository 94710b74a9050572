package report

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"du-browser/internal/hash"
)

const (
	// Longer lines are truncated and reported as malformed.
	maxLineSize    = 1024 * 1024
	readBufferSize = 64 * 1024
	// Malformed lines are echoed in errors up to this many bytes.
	maxEchoSize = 80
)

// Store gives read-only, line level access to a report file. It keeps no
// open handle between scans, so any number of scans may run at once.
type Store struct {
	path        string
	defaultPath string
	fingerprint string
}

// ScanStats summarizes one pass over the report.
type ScanStats struct {
	Lines   int // all lines read, including blank ones
	Matched int // valid entries passed to the callback
	Skipped int // malformed lines that matched the prefix
	Blank   int // blank lines that matched the prefix
}

// ScanHandler receives the results of one scan. Nil fields are ignored.
type ScanHandler struct {
	Entry     func(Entry)
	Malformed func(*MalformedLineError)
	// Read is called with the byte length of every line read, newline
	// included.
	Read func(n int64)
}

type rawLine struct {
	text    string
	size    int64
	tooLong bool
}

// Open opens the report at path and determines its default path from the
// first line that begins with "/".
func Open(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	s := &Store{
		path:        path,
		fingerprint: hash.Fingerprint(path, info),
	}

	for line, err := range s.rawLines() {
		if err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
		if !line.tooLong && strings.HasPrefix(line.text, "/") {
			s.defaultPath = strings.Fields(line.text)[0]
			return s, nil
		}
	}

	return nil, &ConfigError{Path: path, Err: errEmptyReport}
}

// Path returns the report's file path.
func (s *Store) Path() string { return s.path }

// DefaultPath returns the first path listed in the report.
func (s *Store) DefaultPath() string { return s.defaultPath }

// Fingerprint identifies the report version seen by Open.
func (s *Store) Fingerprint() string { return s.fingerprint }

// Lines returns the raw lines of the report. Every iteration re-opens the
// file and reads it from the beginning. Lines longer than 1MB are cut to
// that length. A read error is yielded once and ends the sequence.
func (s *Store) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for line, err := range s.rawLines() {
			if !yield(line.text, err) {
				return
			}
		}
	}
}

// Scan parses every line beginning with prefix and passes the valid entries
// to fn in file order. Malformed lines are counted and skipped; only I/O
// failures are returned as errors.
func (s *Store) Scan(prefix string, fn func(Entry)) (ScanStats, error) {
	return s.ScanWith(prefix, ScanHandler{Entry: fn})
}

// ScanWith is Scan with callbacks for malformed lines and read progress.
func (s *Store) ScanWith(prefix string, h ScanHandler) (ScanStats, error) {
	var stats ScanStats

	for line, err := range s.rawLines() {
		if err != nil {
			return stats, err
		}
		stats.Lines++
		if h.Read != nil {
			h.Read(line.size)
		}

		if !strings.HasPrefix(line.text, prefix) {
			continue
		}
		if strings.TrimSpace(line.text) == "" {
			stats.Blank++
			continue
		}

		entry, err := parseRawLine(line)
		if err != nil {
			stats.Skipped++
			var mErr *MalformedLineError
			if h.Malformed != nil && errors.As(err, &mErr) {
				h.Malformed(mErr)
			}
			continue
		}
		stats.Matched++
		if h.Entry != nil {
			h.Entry(entry)
		}
	}

	return stats, nil
}

func parseRawLine(line rawLine) (Entry, error) {
	if !line.tooLong {
		entry, err := ParseLine(line.text)
		if err != nil {
			var mErr *MalformedLineError
			if errors.As(err, &mErr) && len(mErr.Line) > maxEchoSize {
				mErr.Line = mErr.Line[:maxEchoSize] + "..."
			}
		}
		return entry, err
	}
	return Entry{}, &MalformedLineError{
		Line:   line.text[:min(len(line.text), maxEchoSize)] + "...",
		Reason: fmt.Sprintf("line longer than %d bytes", maxLineSize),
	}
}

func (s *Store) rawLines() iter.Seq2[rawLine, error] {
	return func(yield func(rawLine, error) bool) {
		file, err := os.Open(s.path)
		if err != nil {
			yield(rawLine{}, fmt.Errorf("failed to open report: %w", err))
			return
		}
		defer file.Close()

		r := bufio.NewReaderSize(file, readBufferSize)
		for {
			line, err := readLine(r)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(rawLine{}, fmt.Errorf("failed to read report: %w", err))
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

// readLine reads one line without its line ending. The text of lines
// longer than maxLineSize is truncated and the rest of the line discarded.
func readLine(r *bufio.Reader) (rawLine, error) {
	var (
		buf  []byte
		line rawLine
	)
	for {
		frag, err := r.ReadSlice('\n')
		line.size += int64(len(frag))
		if room := maxLineSize - len(buf); len(frag) > room {
			frag = frag[:room]
			line.tooLong = true
		}
		buf = append(buf, frag...)

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF:
			if line.size == 0 {
				return rawLine{}, io.EOF
			}
		case err != nil:
			return rawLine{}, err
		}

		buf = bytes.TrimSuffix(buf, []byte("\n"))
		buf = bytes.TrimSuffix(buf, []byte("\r"))
		line.text = string(buf)
		return line, nil
	}
}
