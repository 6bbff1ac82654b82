// Package eventlog stores the append-only keystroke history.
package eventlog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/keydrill/internal/model"
)

const fieldSep = ", "

// ErrMalformedLine is wrapped by every ParseError.
var ErrMalformedLine = errors.New("malformed event line")

// ParseError identifies the log line that could not be decoded.
type ParseError struct {
	Line int
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %q: %v", e.Line, e.Raw, e.Err)
	}
	return fmt.Sprintf("%q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Encodable reports whether key fits in one event field: non-empty,
// without line breaks and without the field separator.
func Encodable(key string) bool {
	return key != "" && !strings.Contains(key, fieldSep) && !strings.ContainsAny(key, "\r\n")
}

// FormatEvent renders "timestamp, character, typed_character, elapsed".
func FormatEvent(e model.Event) string {
	return strings.Join([]string{
		strconv.FormatInt(e.Timestamp, 10),
		e.Char,
		e.Typed,
		strconv.FormatFloat(e.Elapsed, 'f', 2, 64),
	}, fieldSep)
}

// ParseEvent decodes one line produced by FormatEvent.
func ParseEvent(line string) (model.Event, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 4 {
		return model.Event{}, &ParseError{
			Raw: line,
			Err: fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformedLine, len(fields)),
		}
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return model.Event{}, &ParseError{Raw: line, Err: fmt.Errorf("%w: bad timestamp: %v", ErrMalformedLine, err)}
	}
	if fields[1] == "" || fields[2] == "" {
		return model.Event{}, &ParseError{Raw: line, Err: fmt.Errorf("%w: empty character", ErrMalformedLine)}
	}
	elapsed, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return model.Event{}, &ParseError{Raw: line, Err: fmt.Errorf("%w: bad elapsed: %v", ErrMalformedLine, err)}
	}
	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) || elapsed < 0 {
		return model.Event{}, &ParseError{Raw: line, Err: fmt.Errorf("%w: elapsed %q out of range", ErrMalformedLine, fields[3])}
	}
	return model.Event{
		Timestamp: ts,
		Char:      fields[1],
		Typed:     fields[2],
		Elapsed:   model.RoundElapsed(elapsed),
	}, nil
}
