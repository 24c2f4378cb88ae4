package domain

import "strings"

// Command describes an external program invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds variables added on top of the inherited environment.
	Env map[string]string
}

// NewCommand builds a Command from an argv slice. It returns false for an empty argv.
func NewCommand(argv []string, dir string) (Command, bool) {
	if len(argv) == 0 || argv[0] == "" {
		return Command{}, false
	}
	return Command{Name: argv[0], Args: append([]string(nil), argv[1:]...), Dir: dir}, true
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// BundleRequest describes a script bundle to produce.
type BundleRequest struct {
	// Entry is the entry script path.
	Entry string
	// Root is the directory module resolution starts from.
	Root string
	// External lists module names left for the page to provide.
	External []string
	// SourceMap inlines a source map into the bundle.
	SourceMap bool
}
