package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"langtest.dev/pkg/langtest/internal/controller"
	"langtest.dev/pkg/langtest/internal/domain"
)

var runIgnoredFlag bool
var runNoCaptureFlag bool
var runFailedFlag bool
var runThreadsFlag int
var runRerunAtMostFlag int
var runTimeoutFlag int
var runTUIFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [filters...]",
		Short: "Run the tests",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, cleanup, err := prepareConfig()
			if err != nil {
				return err
			}
			defer cleanup()

			cfg.Filters = args
			cfg.IgnoredOnly = runIgnoredFlag
			cfg.NoCapture = runNoCaptureFlag
			cfg.FailedOnly = runFailedFlag

			interactive := viper.GetBool(runTUIKey) && !runNoCaptureFlag
			ui := controller.NewUI(cmd.OutOrStdout(), cmd.ErrOrStderr(), interactive)

			summary, err := newWorkflow(ui).Run(ctx, cfg)
			if err != nil {
				return err
			}

			if !summary.OK() {
				return errTestsFailed
			}

			return nil
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&runIgnoredFlag, ignoredFlagName, false, "run only the tests marked by their ignore-if predicate")
	cmd.Flags().BoolVar(&runNoCaptureFlag, noCaptureFlagName, false, "echo child stdout and stderr to the console")
	cmd.Flags().BoolVar(&runFailedFlag, failedFlagName, false, "run only the tests that failed in the last run")

	cmd.Flags().IntVarP(&runThreadsFlag, testThreadsFlagName, "j", viper.GetInt(runParallelKey), "number of tests run at once (0 = number of CPUs)")
	bindFlagToConfig(cmd.Flags().Lookup(testThreadsFlagName), runParallelKey)

	cmd.Flags().IntVar(&runRerunAtMostFlag, rerunAtMostFlagName, viper.GetInt(runRerunAtMostKey), "reruns allowed per test file when a rerun-if clause matches")
	bindFlagToConfig(cmd.Flags().Lookup(rerunAtMostFlagName), runRerunAtMostKey)

	cmd.Flags().IntVar(&runTimeoutFlag, timeoutFlagName, viper.GetInt(runTimeoutKey), "kill a stage after this many seconds (0 = never)")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), runTimeoutKey)

	cmd.Flags().BoolVar(&runTUIFlag, tuiFlagName, viper.GetBool(runTUIKey), "show a progress bar when the output is a terminal")
	bindFlagToConfig(cmd.Flags().Lookup(tuiFlagName), runTUIKey)
}

// prepareConfig loads the settings and creates the per-run temporary
// directory. cleanup removes that directory.
func prepareConfig() (domain.Config, func(), error) {
	settings, err := loadHarnessSettings()
	if err != nil {
		return domain.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tempDir, err := fsAdapter.CreateTempDir("langtest-")
	if err != nil {
		return domain.Config{}, nil, fmt.Errorf("create temp dir: %w", err)
	}

	cleanup := func() {
		if err := fsAdapter.RemoveAll(tempDir); err != nil {
			slog.Warn("Failed to remove temp dir", "path", tempDir, "error", err)
		}
	}

	cfg, err := buildConfig(settings, fsAdapter, tempDir)
	if err != nil {
		cleanup()
		return domain.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, cleanup, nil
}
