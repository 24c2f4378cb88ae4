package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Quillfile represents the structure of quill.yaml and quill.toml.
// Omitted sections keep their defaults.
type Quillfile struct {
	Output        string         `yaml:"output" toml:"output"`
	VendorScripts []string       `yaml:"vendor_scripts" toml:"vendor_scripts"`
	App           *ScriptDTO     `yaml:"app" toml:"app"`
	Tests         *ScriptDTO     `yaml:"tests" toml:"tests"`
	Stylesheet    *StylesheetDTO `yaml:"stylesheet" toml:"stylesheet"`
	OAuth         *OAuthDTO      `yaml:"oauth" toml:"oauth"`
	Commands      *CommandsDTO   `yaml:"commands" toml:"commands"`
	Watch         *WatchDTO      `yaml:"watch" toml:"watch"`
}

// ScriptDTO represents a bundled script target.
type ScriptDTO struct {
	Entry    string   `yaml:"entry" toml:"entry"`
	Output   string   `yaml:"output" toml:"output"`
	External []string `yaml:"external" toml:"external"`
}

// StylesheetDTO represents the stylesheet target.
type StylesheetDTO struct {
	Entry  string `yaml:"entry" toml:"entry"`
	Root   string `yaml:"root" toml:"root"`
	Output string `yaml:"output" toml:"output"`
	Strict bool   `yaml:"strict" toml:"strict"`
}

// OAuthDTO represents the credentials bootstrap.
type OAuthDTO struct {
	Path string `yaml:"path" toml:"path"`
	URL  string `yaml:"url" toml:"url"`
}

// CommandsDTO represents the external programs.
type CommandsDTO struct {
	Translations Argv `yaml:"translations" toml:"translations"`
	Templates    Argv `yaml:"templates" toml:"templates"`
	Test         Argv `yaml:"test" toml:"test"`
}

// WatchDTO represents the watch pattern groups.
type WatchDTO struct {
	Debounce  string   `yaml:"debounce" toml:"debounce"`
	App       []string `yaml:"app" toml:"app"`
	Tests     []string `yaml:"tests" toml:"tests"`
	Templates []string `yaml:"templates" toml:"templates"`
	CSS       []string `yaml:"css" toml:"css"`
}

// Argv is a command line written either as a list or as a single whitespace separated string.
type Argv []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Argv) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*a = strings.Fields(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*a = list
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (a *Argv) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		*a = strings.Fields(x)
	case []any:
		list := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("command argument %v is not a string", item)
			}
			list = append(list, s)
		}
		*a = list
	default:
		return fmt.Errorf("command must be a string or a list of strings, got %T", v)
	}
	return nil
}
