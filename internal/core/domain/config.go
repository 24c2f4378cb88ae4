package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Config is the resolved pipeline configuration.
// Relative paths are interpreted against Root.
type Config struct {
	Root          string
	Output        string
	VendorScripts PatternGroup
	App           ScriptTarget
	Tests         ScriptTarget
	Stylesheet    StylesheetTarget
	OAuth         OAuthTarget
	Commands      Commands
	Watch         WatchConfig
}

// ScriptTarget describes a bundled script deliverable.
type ScriptTarget struct {
	Entry    string
	Output   string
	External []string
}

// StylesheetTarget describes the stylesheet deliverable.
type StylesheetTarget struct {
	Entry  string
	Root   string
	Output string
	// Strict turns stylesheet processing errors into task failures.
	Strict bool
}

// OAuthTarget describes the credentials file bootstrap.
type OAuthTarget struct {
	Path string
	URL  string
}

// Commands holds the argv of every external program the pipeline runs.
type Commands struct {
	Translations []string
	Templates    []string
	Test         []string
}

// WatchConfig holds the pattern groups observed by the watch task.
type WatchConfig struct {
	Debounce  time.Duration
	App       PatternGroup
	Tests     PatternGroup
	Templates PatternGroup
	CSS       PatternGroup
}

// DefaultConfig returns the configuration used when no config file is present.
func DefaultConfig(root string) Config {
	return Config{
		Root:          root,
		Output:        "dist",
		VendorScripts: NewPatternGroup("vendor", "vendor/liquid.js"),
		App: ScriptTarget{
			Entry:  "app/boot.js",
			Output: "prose.js",
		},
		Tests: ScriptTarget{
			Entry:    "test/index.js",
			Output:   "test/lib/index.js",
			External: []string{"chai", "mocha"},
		},
		Stylesheet: StylesheetTarget{
			Entry:  "style/style.css",
			Root:   "styles",
			Output: "prose.css",
		},
		OAuth: OAuthTarget{
			Path: "oauth.json",
			URL:  "https://raw.githubusercontent.com/prose/prose/gh-pages/oauth.json",
		},
		Commands: Commands{
			Translations: []string{"node", "translations/update_locales"},
			Templates:    []string{"node", "build"},
			Test:         []string{"./node_modules/mocha-phantomjs/bin/mocha-phantomjs", "test/index.html"},
		},
		Watch: WatchConfig{
			Debounce:  DefaultDebounce,
			App:       NewPatternGroup("app", "app/**/**/*.js"),
			Tests:     NewPatternGroup("tests", "test/**/*.{js,json}", "test/index.html", "!test/lib/index.js"),
			Templates: NewPatternGroup("templates", "templates/**/*.html"),
			CSS:       NewPatternGroup("css", "style/**/*.css"),
		},
	}
}

// Path resolves p against the project root unless it is already absolute.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// OutputDir returns the absolute output directory.
func (c *Config) OutputDir() string {
	return c.Path(c.Output)
}

// OutputPath returns the absolute path of a file inside the output directory.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir(), name)
}

// OutputEnclosesRoot reports whether the output directory is the project root or one of its ancestors.
func (c *Config) OutputEnclosesRoot() bool {
	rel, err := filepath.Rel(c.OutputDir(), filepath.Clean(c.Root))
	if err != nil {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
