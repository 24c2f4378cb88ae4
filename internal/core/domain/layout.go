package domain

import "time"

const (
	// ConfigFileName is the name of the YAML project configuration file.
	ConfigFileName = "quill.yaml"

	// TOMLConfigFileName is the name of the TOML project configuration file.
	TOMLConfigFileName = "quill.toml"

	// ModeEnvVar selects the build mode for an invocation.
	ModeEnvVar = "QUILL_ENV"

	// ProductionMode is the ModeEnvVar value that enables compaction.
	ProductionMode = "production"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// DefaultDebounce is the default coalescing window for watch events.
	DefaultDebounce = 200 * time.Millisecond
)

// Metadata keys attached to errors.
const (
	MetaTask     = "task"
	MetaPath     = "path"
	MetaCommand  = "command"
	MetaExitCode = "exit_code"
	MetaURL      = "url"
	MetaStatus   = "status"
	MetaPattern  = "pattern"
)

// Span attributes recorded for every task run.
const (
	AttrProduction = "quill.production"
	AttrExitCode   = "quill.exit_code"
	AttrCancelled  = "quill.cancelled"
)
