// Package glob implements path pattern groups using gobwas/glob.
package glob

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

var _ ports.Globber = (*Globber)(nil)

// skipDirectories are never descended into while expanding patterns.
var skipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// Globber implements ports.Globber.
type Globber struct{}

// New creates a new Globber.
func New() *Globber {
	return &Globber{}
}

// Matcher matches root-relative, slash-separated paths against a compiled group.
type Matcher struct {
	includes [][]glob.Glob
	excludes []glob.Glob
}

// Match reports whether p matches an include pattern and no exclude pattern.
func (m *Matcher) Match(p string) bool {
	return m.index(p) >= 0
}

// index returns the position of the first include pattern matching p, or -1.
func (m *Matcher) index(p string) int {
	for _, ex := range m.excludes {
		if ex.Match(p) {
			return -1
		}
	}
	for i, variants := range m.includes {
		for _, g := range variants {
			if g.Match(p) {
				return i
			}
		}
	}
	return -1
}

// Compile implements ports.Globber.
func (g *Globber) Compile(group domain.PatternGroup) (ports.Matcher, error) {
	return compile(group)
}

func compile(group domain.PatternGroup) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range group.Includes() {
		variants, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		m.includes = append(m.includes, variants)
	}
	for _, pattern := range group.Excludes() {
		variants, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		m.excludes = append(m.excludes, variants...)
	}
	return m, nil
}

func compilePattern(pattern string) ([]glob.Glob, error) {
	if pattern == "" || strings.HasPrefix(pattern, "/") {
		return nil, domain.Annotate(domain.ErrInvalidPattern, domain.MetaPattern, pattern)
	}

	var out []glob.Glob
	for _, variant := range globstarVariants(pattern) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, domain.Annotate(errors.Join(domain.ErrInvalidPattern, err), domain.MetaPattern, pattern)
		}
		out = append(out, g)
	}
	return out, nil
}

// globstarVariants expands every "**/" segment into the forms with and without it,
// so that "**/" also matches zero directories.
func globstarVariants(pattern string) []string {
	variants := []string{pattern}
	for i := 0; i < len(variants); i++ {
		v := variants[i]
		for j := 0; j+3 <= len(v); j++ {
			if v[j:j+3] != "**/" || (j > 0 && v[j-1] != '/') {
				continue
			}
			if reduced := v[:j] + v[j+3:]; !slices.Contains(variants, reduced) {
				variants = append(variants, reduced)
			}
		}
	}
	return variants
}

// Expand implements ports.Globber.
func (g *Globber) Expand(root string, group domain.PatternGroup) ([]string, error) {
	m, err := compile(group)
	if err != nil {
		return nil, err
	}

	buckets := make([][]string, len(m.includes))
	seen := make(map[string]bool)

	for _, base := range baseDirs(group.Includes()) {
		start := filepath.Join(root, filepath.FromSlash(base))
		info, err := os.Stat(start)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			collect(m, root, start, buckets, seen)
			continue
		}
		err = filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}
			if d.IsDir() {
				if p != start && skipDirectories[d.Name()] {
					return fs.SkipDir
				}
				return nil
			}
			collect(m, root, p, buckets, seen)
			return nil
		})
		if err != nil {
			return nil, domain.Annotate(errors.Join(domain.ErrReadFailed, err), domain.MetaPath, start)
		}
	}

	var files []string
	for _, bucket := range buckets {
		slices.Sort(bucket)
		files = append(files, bucket...)
	}
	return files, nil
}

func collect(m *Matcher, root, abs string, buckets [][]string, seen map[string]bool) {
	if seen[abs] {
		return
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return
	}
	if i := m.index(filepath.ToSlash(rel)); i >= 0 {
		seen[abs] = true
		buckets[i] = append(buckets[i], abs)
	}
}

// baseDirs returns the static directory prefix of every pattern, without duplicates
// and without entries nested inside another entry.
func baseDirs(patterns []string) []string {
	var bases []string
	for _, p := range patterns {
		bases = append(bases, staticPrefix(p))
	}
	slices.Sort(bases)
	bases = slices.Compact(bases)

	var out []string
	for _, b := range bases {
		nested := slices.ContainsFunc(out, func(o string) bool {
			return o == "." || strings.HasPrefix(b, o+"/")
		})
		if !nested {
			out = append(out, b)
		}
	}
	return out
}

// staticPrefix returns the part of pattern before its first meta character.
// A pattern without meta characters is returned whole.
func staticPrefix(pattern string) string {
	i := strings.IndexAny(pattern, `*?[{\`)
	if i < 0 {
		return pattern
	}
	return path.Dir(pattern[:i] + "x")
}
