package domain

// Standard task names.
const (
	TaskClean        = "clean"
	TaskTranslations = "translations"
	TaskCSS          = "css"
	TaskTemplates    = "templates"
	TaskOAuth        = "oauth"
	TaskBuildTests   = "build-tests"
	TaskBuildApp     = "build-app"
	TaskWatch        = "watch"
	TaskTest         = "test"
	TaskBuild        = "build"
	TaskProduction   = "production"
	TaskDefault      = "default"
)

// TaskInfo is the name and description of a task, as listed by the CLI.
type TaskInfo struct {
	Name        string
	Description string
}

// StandardTasks lists the tasks every pipeline provides, in presentation order.
func StandardTasks() []TaskInfo {
	return []TaskInfo{
		{TaskClean, "Remove the build output directory"},
		{TaskTranslations, "Sync translations, then rebuild templates"},
		{TaskCSS, "Inline stylesheet imports into the output directory"},
		{TaskTemplates, "Build templates"},
		{TaskOAuth, "Create the OAuth credentials file if it is missing"},
		{TaskBuildTests, "Bundle the test suite with vendor scripts"},
		{TaskBuildApp, "Bundle the application with vendor scripts"},
		{TaskWatch, "Build, then rebuild on file changes"},
		{TaskTest, "Build and run the test suite"},
		{TaskBuild, "Build application, tests and stylesheet"},
		{TaskProduction, "Build with compaction enabled"},
		{TaskDefault, "Alias for build"},
	}
}
