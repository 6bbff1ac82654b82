package universe

import (
	"fmt"
	"sort"
	"strings"
)

const (
	lowerSet = "abcdefghijklmnopqrstuvwxyz"
	upperSet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitSet = "0123456789"
	punctSet = ".,!?;:\"'{}()[]-=/<>`"
	homeRow  = "asdfghjkl;"
)

// DefaultPreset is written when no universe file exists.
const DefaultPreset = "lower"

var presets = map[string]string{
	"lower":    lowerSet,
	"upper":    upperSet,
	"digits":   digitSet,
	"punct":    punctSet,
	"home-row": homeRow,
	"all":      lowerSet + upperSet + digitSet + punctSet,
}

// Preset returns the characters of a named preset.
func Preset(name string) ([]string, error) {
	set, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return Split(set), nil
}

// PresetNames lists preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Split turns a string into its characters, dropping repeats.
func Split(s string) []string {
	seen := map[rune]struct{}{}
	out := make([]string, 0, len(s))
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, string(r))
	}
	return out
}
