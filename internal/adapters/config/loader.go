// Package config provides the configuration loader for quill.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader for quill.yaml and quill.toml files.
type Loader struct {
	logger  ports.Logger
	globber ports.Globber
}

// NewLoader creates a new Loader. Pattern groups are checked with globber.
func NewLoader(logger ports.Logger, globber ports.Globber) *Loader {
	return &Loader{logger: logger, globber: globber}
}

// Load resolves the configuration for the project containing cwd.
func (l *Loader) Load(cwd, path string) (*domain.Config, error) {
	if path == "" {
		found, err := l.discover(cwd)
		if err != nil {
			return nil, err
		}
		if found == "" {
			cfg := domain.DefaultConfig(cwd)
			return &cfg, l.validate(&cfg)
		}
		path = found
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	return l.loadFile(path)
}

// discover walks up from cwd and returns the first config file found, or "".
func (l *Loader) discover(cwd string) (string, error) {
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", domain.Annotate(errors.Join(domain.ErrConfigReadFailed, err), domain.MetaPath, cwd)
	}

	for {
		yamlPath := filepath.Join(dir, domain.ConfigFileName)
		tomlPath := filepath.Join(dir, domain.TOMLConfigFileName)
		hasYAML, hasTOML := isFile(yamlPath), isFile(tomlPath)

		switch {
		case hasYAML && hasTOML:
			l.logger.Warn("using " + domain.ConfigFileName + ", ignoring " + domain.TOMLConfigFileName + " in " + dir)
			return yamlPath, nil
		case hasYAML:
			return yamlPath, nil
		case hasTOML:
			return tomlPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, domain.Annotate(errors.Join(domain.ErrConfigReadFailed, err), domain.MetaPath, path)
	}

	qf, err := decode(path, data)
	if err != nil {
		return nil, domain.Annotate(errors.Join(domain.ErrConfigParseFailed, err), domain.MetaPath, path)
	}

	cfg := domain.DefaultConfig(filepath.Dir(path))
	if err := apply(&cfg, qf); err != nil {
		return nil, domain.Annotate(err, domain.MetaPath, path)
	}
	if err := l.validate(&cfg); err != nil {
		return nil, domain.Annotate(err, domain.MetaPath, path)
	}
	return &cfg, nil
}

func decode(path string, data []byte) (*Quillfile, error) {
	var qf Quillfile
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(data), &qf)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New("unknown key " + undecoded[0].String())
		}
		return &qf, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&qf); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &qf, nil
}

// apply overlays the file's settings on the defaults. Empty strings and absent lists keep defaults.
func apply(cfg *domain.Config, qf *Quillfile) error {
	setString(&cfg.Output, qf.Output)
	if qf.VendorScripts != nil {
		cfg.VendorScripts = domain.NewPatternGroup("vendor", qf.VendorScripts...)
	}
	if qf.App != nil {
		applyScript(&cfg.App, qf.App)
	}
	if qf.Tests != nil {
		applyScript(&cfg.Tests, qf.Tests)
	}
	if s := qf.Stylesheet; s != nil {
		setString(&cfg.Stylesheet.Entry, s.Entry)
		setString(&cfg.Stylesheet.Root, s.Root)
		setString(&cfg.Stylesheet.Output, s.Output)
		cfg.Stylesheet.Strict = s.Strict
	}
	if o := qf.OAuth; o != nil {
		setString(&cfg.OAuth.Path, o.Path)
		setString(&cfg.OAuth.URL, o.URL)
	}
	if c := qf.Commands; c != nil {
		setArgv(&cfg.Commands.Translations, c.Translations)
		setArgv(&cfg.Commands.Templates, c.Templates)
		setArgv(&cfg.Commands.Test, c.Test)
	}
	if w := qf.Watch; w != nil {
		if w.Debounce != "" {
			d, err := time.ParseDuration(w.Debounce)
			if err != nil || d < 0 {
				if err == nil {
					err = errors.New("debounce must not be negative")
				}
				return domain.Annotate(errors.Join(domain.ErrConfigInvalid, err), "key", "watch.debounce")
			}
			cfg.Watch.Debounce = d
		}
		setGroup(&cfg.Watch.App, "app", w.App)
		setGroup(&cfg.Watch.Tests, "tests", w.Tests)
		setGroup(&cfg.Watch.Templates, "templates", w.Templates)
		setGroup(&cfg.Watch.CSS, "css", w.CSS)
	}
	return nil
}

func applyScript(dst *domain.ScriptTarget, src *ScriptDTO) {
	setString(&dst.Entry, src.Entry)
	setString(&dst.Output, src.Output)
	if src.External != nil {
		dst.External = append([]string(nil), src.External...)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setArgv(dst *[]string, v Argv) {
	if v != nil {
		*dst = append([]string(nil), v...)
	}
}

func setGroup(dst *domain.PatternGroup, name string, patterns []string) {
	if patterns != nil {
		*dst = domain.NewPatternGroup(name, patterns...)
	}
}

// validate rejects configurations the pipeline cannot run.
func (l *Loader) validate(cfg *domain.Config) error {
	required := []struct{ key, value string }{
		{"output", cfg.Output},
		{"app.entry", cfg.App.Entry},
		{"app.output", cfg.App.Output},
		{"tests.entry", cfg.Tests.Entry},
		{"tests.output", cfg.Tests.Output},
		{"stylesheet.entry", cfg.Stylesheet.Entry},
		{"stylesheet.output", cfg.Stylesheet.Output},
		{"oauth.path", cfg.OAuth.Path},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.Annotate(domain.ErrConfigInvalid, "key", r.key)
		}
	}
	if cfg.OutputEnclosesRoot() {
		return domain.Annotate(domain.ErrConfigInvalid, "key", "output")
	}

	groups := []domain.PatternGroup{
		cfg.VendorScripts, cfg.Watch.App, cfg.Watch.Tests, cfg.Watch.Templates, cfg.Watch.CSS,
	}
	for _, g := range groups {
		if _, err := l.globber.Compile(g); err != nil {
			return err
		}
	}
	return nil
}
