// Package commands implements the CLI commands for the quill build tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/app"
	"go.trai.ch/quill/internal/build"
	"go.trai.ch/quill/internal/core/domain"
)

// CLI represents the command line interface for quill.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, targetNames []string, opts app.RunOptions) error
	Tasks() []domain.TaskInfo
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "quill [task]",
		Short:         "Build pipeline for the front-end of a static web application",
		Long:          "Runs build tasks and their prerequisites. Without a task the default build runs.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.BoolP("production", "p", false, "Compact the application bundle (same as "+domain.ModeEnvVar+"="+domain.ProductionMode+")")
	flags.StringP("chdir", "C", "", "Run as if quill was started in this directory")
	flags.StringP("config", "c", "", "Path to the config file (default: discovered quill.yaml or quill.toml)")
	flags.Bool("json-log", false, "Write log messages as JSON")

	c.rootCmd = rootCmd

	for _, info := range a.Tasks() {
		rootCmd.AddCommand(c.newTaskCmd(info))
	}
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// run forwards targets and the persistent flags to the application.
func (c *CLI) run(cmd *cobra.Command, targets []string) error {
	production, _ := cmd.Flags().GetBool("production")
	chdir, _ := cmd.Flags().GetString("chdir")
	configPath, _ := cmd.Flags().GetString("config")
	jsonLog, _ := cmd.Flags().GetBool("json-log")

	return c.app.Run(cmd.Context(), targets, app.RunOptions{
		Production: production,
		Chdir:      chdir,
		ConfigPath: configPath,
		JSONLog:    jsonLog,
	})
}
