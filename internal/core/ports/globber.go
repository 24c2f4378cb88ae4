package ports

import "go.trai.ch/quill/internal/core/domain"

// Matcher reports whether a slash-separated, root-relative path belongs to a pattern group.
type Matcher interface {
	Match(path string) bool
}

// Globber compiles pattern groups and expands them against the file system.
type Globber interface {
	// Compile validates the group's patterns and returns a matcher for them.
	Compile(group domain.PatternGroup) (Matcher, error)
	// Expand returns the absolute paths of the files under root matched by group.
	// Files are ordered by the first include pattern that matches them, then lexically.
	Expand(root string, group domain.PatternGroup) ([]string, error)
}
