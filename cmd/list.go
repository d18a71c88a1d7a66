package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"langtest.dev/pkg/langtest/internal/controller"
	m "langtest.dev/pkg/langtest/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [filters...]",
		Short: "List tests and the stages they describe",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := controller.NewSimpleUI(cmd.OutOrStdout(), cmd.ErrOrStderr())

			_, err := listTests(cmd.Context(), ui, args)

			return err
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listTests(ctx context.Context, ui controller.UI, filters []string) ([]m.TestListing, error) {
	settings, err := loadHarnessSettings()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Listing never runs commands, so no temp dir is needed.
	cfg, err := buildConfig(settings, fsAdapter, "")
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Filters = filters

	return newWorkflow(ui).List(ctx, cfg)
}
