package domain

import "strings"

// PatternGroup is a named, immutable list of glob patterns.
// Patterns use forward slashes, relative to the project root.
// A leading "!" turns a pattern into an exclusion.
type PatternGroup struct {
	name     string
	patterns []string
}

// NewPatternGroup creates a pattern group. The pattern slice is copied.
func NewPatternGroup(name string, patterns ...string) PatternGroup {
	return PatternGroup{name: name, patterns: append([]string(nil), patterns...)}
}

// Name returns the group name.
func (p PatternGroup) Name() string {
	return p.name
}

// Patterns returns a copy of the patterns in declaration order.
func (p PatternGroup) Patterns() []string {
	return append([]string(nil), p.patterns...)
}

// Includes returns the positive patterns in declaration order.
func (p PatternGroup) Includes() []string {
	var out []string
	for _, pat := range p.patterns {
		if !strings.HasPrefix(pat, "!") {
			out = append(out, pat)
		}
	}
	return out
}

// Excludes returns the exclusion patterns with the "!" prefix removed.
func (p PatternGroup) Excludes() []string {
	var out []string
	for _, pat := range p.patterns {
		if rest, ok := strings.CutPrefix(pat, "!"); ok {
			out = append(out, rest)
		}
	}
	return out
}

// IsEmpty reports whether the group has no positive pattern.
func (p PatternGroup) IsEmpty() bool {
	return len(p.Includes()) == 0
}

// WatchBinding ties a pattern group to the tasks re-run, in series, when a matching file changes.
type WatchBinding struct {
	Patterns PatternGroup
	Tasks    []string
}
