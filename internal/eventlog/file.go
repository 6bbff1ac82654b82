package eventlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/keydrill/internal/fileutil"
	"github.com/verte-zerg/keydrill/internal/model"
)

// FileBackend keeps the log as one text line per event.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a backend for the given log file.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

// Load reads every event. A missing file is an empty history; the first
// malformed line aborts the load.
func (b *FileBackend) Load(_ context.Context) ([]model.Event, error) {
	file, err := os.Open(b.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", b.Path).Msg("no event log yet")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("path", b.Path).Msg("failed to close event log")
		}
	}()

	var events []model.Event
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		e, err := ParseEvent(raw)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Line = lineNo
			}
			return nil, fmt.Errorf("failed to parse %s: %w", b.Path, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	return events, nil
}

// Save replaces the log file with the given events in order.
func (b *FileBackend) Save(_ context.Context, events []model.Event) error {
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = FormatEvent(e)
	}
	return fileutil.WriteLines(b.Path, lines)
}

// Append adds one event to the end of the file.
func (b *FileBackend) Append(_ context.Context, e model.Event) error {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(b.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	if _, err := fmt.Fprintln(file, FormatEvent(e)); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to append event: %w", err)
	}
	return file.Close()
}

// Close is a no-op for files.
func (b *FileBackend) Close() error {
	return nil
}
