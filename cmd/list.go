package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"composify.dev/pkg/composify/internal/domain"
	m "composify.dev/pkg/composify/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <workspace>",
		Short: "List convertible nodes without changing anything",
		Long: `List every node constructor composify would offer to convert, together
with the namespace-qualified name it would be registered under.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildWorkflow(cmd, workflowOptions{}).List(cmd.Context(), domain.ListArgs{
				Root:    m.Path(args[0]),
				Exclude: viper.GetStringSlice(excludeConfigKey),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
