package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/ui/output"
	"go.trai.ch/quill/internal/ui/style"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available tasks",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			tasks := c.app.Tasks()
			width := 0
			for _, t := range tasks {
				width = max(width, len(t.Name))
			}

			out := output.New(cmd.OutOrStdout())
			for _, t := range tasks {
				name := out.String(fmt.Sprintf("%-*s", width, t.Name)).Foreground(out.Color(string(style.Quill))).String()
				_, _ = fmt.Fprintf(out, "%s  %s\n", name, t.Description)
			}
		},
	}
}
