// Package cmd provides the root command and CLI setup for langtest.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"langtest.dev/pkg/langtest/internal/adapter"
	"langtest.dev/pkg/langtest/internal/controller"
	"langtest.dev/pkg/langtest/internal/domain"
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var processAdapter adapter.ProcessAdapter

// newWorkflow builds the workflow for one command invocation. The UI is only
// known once the command's output and flags are.
var newWorkflow = func(ui controller.UI) domain.Workflow {
	return domain.NewWorkflow(fsAdapter, reportStore, processAdapter, ui)
}

// errTestsFailed makes the process exit 1 without printing anything more
// than the summary already did.
var errTestsFailed = errors.New("tests failed")

// reportDirFlag is a root-level flag shared by commands that read/write reports.
var reportDirFlag string

var logFileFlag string
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewYAMLReportStore()
	processAdapter = adapter.NewLocalProcessAdapter()
}

const rootLongDescription = `Langtest runs tests for compilers and interpreters. Each test file carries
its expected behaviour in a comment block: the exit status, stdin, args and
fuzzy patterns for stdout and stderr of every stage of the tool pipeline.

Stage commands, file extensions and the comment prefix are configured in
langtest.yaml.`

const runLongDescription = `Run the tests under the configured test directory.

Only tests whose name contains one of the given filters are run. Names are
file paths relative to the test directory, without extension, with "::" as
the separator (e.g. parser::unterminated_string).`

const listLongDescription = `List the tests under the configured test directory and the stages they
describe.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "langtest",
		Short:         "Language test harness",
		Long:          rootLongDescription,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportDirFlag, reportDirFlagName, "o",
			viper.GetString(reportDirKey),
			"directory the last run report is kept in",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(reportDirFlagName), reportDirKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file (default from log.filename)")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if !errors.Is(err, errTestsFailed) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Fatal exception:\n  %v\n", err)
	}

	os.Exit(1)
}
