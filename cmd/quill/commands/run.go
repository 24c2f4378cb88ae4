package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/core/domain"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [tasks...]",
		Short: "Run tasks in series",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			return c.run(cmd, args)
		},
	}
}

func (c *CLI) newTaskCmd(info domain.TaskInfo) *cobra.Command {
	return &cobra.Command{
		Use:   info.Name,
		Short: info.Description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, []string{info.Name})
		},
	}
}
