// Package universe loads and writes the set of drillable characters.
package universe

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/keydrill/internal/fileutil"
)

// Load reads one character per line from path. Only the line terminator
// is stripped, so a line holding a single space drills the space bar.
// Empty lines are skipped and repeated characters keep their first
// position.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("path", path).Msg("failed to close universe file")
		}
	}()

	var chars []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) != 1 {
			return nil, fmt.Errorf("line %d: expected a single character, got %q", lineNo, line)
		}
		if _, dup := seen[line]; dup {
			log.Debug().Str("char", line).Int("line", lineNo).Msg("duplicate character in universe")
			continue
		}
		seen[line] = struct{}{}
		chars = append(chars, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("character list is empty")
	}
	return chars, nil
}

// Write stores chars one per line, replacing path atomically.
func Write(path string, chars []string) error {
	return fileutil.WriteLines(path, chars)
}
