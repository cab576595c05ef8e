package cmd

import (
	"github.com/spf13/cobra"

	"composify.dev/pkg/composify/internal/domain"
	m "composify.dev/pkg/composify/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <report>",
		Short: "View a previously written conversion report",
		Long:  "View the outcomes recorded in a report written with --report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildWorkflow(cmd, workflowOptions{}).View(cmd.Context(), domain.ViewArgs{
				Report: m.Path(args[0]),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
