package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"langtest.dev/pkg/langtest/internal/controller"
	m "langtest.dev/pkg/langtest/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View the result of the last run",
		Long:  "Print the tally and the failed tests of the last run from the report directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ui := controller.NewSimpleUI(cmd.OutOrStdout(), cmd.ErrOrStderr())
			reportDir := m.Path(viper.GetString(reportDirKey))

			_, err := newWorkflow(ui).View(cmd.Context(), reportDir)

			return err
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
