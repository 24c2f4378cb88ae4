package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrInvalidTaskName is returned when a task name is empty or contains whitespace.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrGraphNotValidated is returned when a graph is run before Validate succeeded.
	ErrGraphNotValidated = zerr.New("task graph has not been validated")

	// ErrTaskExecutionFailed is returned when a task action fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrBuildExecutionFailed is returned when a top-level invocation fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when a parsed config fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrInvalidPattern is returned when a glob pattern cannot be compiled.
	ErrInvalidPattern = zerr.New("invalid path pattern")

	// ErrCommandFailed is returned when an external program exits with a non-zero status.
	ErrCommandFailed = zerr.New("command failed")

	// ErrCommandStartFailed is returned when an external program cannot be started.
	ErrCommandStartFailed = zerr.New("failed to start command")

	// ErrFetchFailed is returned when a remote resource cannot be fetched.
	ErrFetchFailed = zerr.New("failed to fetch remote resource")

	// ErrBundleFailed is returned when the bundler reports errors.
	ErrBundleFailed = zerr.New("failed to bundle scripts")

	// ErrMinifyFailed is returned when compaction of a bundle fails.
	ErrMinifyFailed = zerr.New("failed to compact bundle")

	// ErrStylesheetFailed is returned when a stylesheet cannot be processed.
	ErrStylesheetFailed = zerr.New("failed to process stylesheet")

	// ErrImportNotFound is returned when an @import target cannot be resolved.
	ErrImportNotFound = zerr.New("failed to find imported stylesheet")

	// ErrReadFailed is returned when a source file cannot be read.
	ErrReadFailed = zerr.New("failed to read file")

	// ErrWriteFailed is returned when an artifact cannot be written.
	ErrWriteFailed = zerr.New("failed to write artifact")

	// ErrCreateDirFailed is returned when a directory cannot be created.
	ErrCreateDirFailed = zerr.New("failed to create directory")

	// ErrCleanFailed is returned when the output directory cannot be removed.
	ErrCleanFailed = zerr.New("failed to remove output directory")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to start file watcher")
)

// Annotate attaches key/value metadata to err while keeping it matchable with errors.Is.
// kv is read in pairs; a trailing key without a value is ignored.
func Annotate(err error, kv ...any) error {
	if err == nil {
		return nil
	}
	out := zerr.Wrap(err, "")
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		out = zerr.With(out, key, kv[i+1])
	}
	return out
}

// ExitCode reports the exit status recorded on the first failed command in err's tree.
func ExitCode(err error) (int, bool) {
	code, found := 0, false
	walkErrors(err, func(e error) bool {
		z, ok := e.(*zerr.Error)
		if !ok {
			return true
		}
		if c, ok := z.Metadata()[MetaExitCode].(int); ok && c > 0 {
			code, found = c, true
			return false
		}
		return true
	})
	return code, found
}

// walkErrors visits err and every error it wraps, depth first, until fn returns false.
func walkErrors(err error, fn func(error) bool) bool {
	if err == nil {
		return true
	}
	if !fn(err) {
		return false
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if !walkErrors(e, fn) {
				return false
			}
		}
	case interface{ Unwrap() error }:
		return walkErrors(x.Unwrap(), fn)
	}
	return true
}
