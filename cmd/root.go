// Package cmd provides the root command and CLI setup for composify.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"composify.dev/pkg/composify/internal/adapter"
	"composify.dev/pkg/composify/internal/controller"
	"composify.dev/pkg/composify/internal/domain"
	m "composify.dev/pkg/composify/internal/model"
)

// workflowOptions selects how the workflow is wired for one invocation.
type workflowOptions struct {
	AssumeYes bool
	DryRun    bool
}

// buildWorkflow wires the workflow for cmd. Tests replace it.
var buildWorkflow = newWorkflow

var (
	assumeYesFlag   bool
	dryRunFlag      bool
	reportFlag      string
	excludePatterns []string
	logFileFlag     string
	verboseFlag     bool
)

const rootLongDescription = `Composify converts standalone ROS 2 C++ nodes into composable components.

It scans the workspace for node constructors, asks which ones to convert, and
for each confirmed node:
  - rewrites the constructor to take "const rclcpp::NodeOptions & options",
  - forwards the options to the rclcpp::Node base initializer,
  - appends the RCLCPP_COMPONENTS_REGISTER_NODE registration,
  - updates the header declaration,
  - passes rclcpp::NodeOptions{} at std::make_shared call sites.

Running it again on a converted workspace changes nothing.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "composify <workspace>",
		Short: "Convert ROS 2 nodes into composable components",
		Long:  rootLongDescription,
		Args:  cobra.ExactArgs(1),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := workflowOptions{
				AssumeYes: viper.GetBool(assumeYesConfigKey),
				DryRun:    viper.GetBool(dryRunConfigKey),
			}

			return buildWorkflow(cmd, opts).Convert(cmd.Context(), domain.ConvertArgs{
				Root:    m.Path(args[0]),
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Report:  m.Path(viper.GetString(reportConfigKey)),
				DryRun:  opts.DryRun,
			})
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&assumeYesFlag, assumeYesFlagName, "y", defaultAssumeYes, "convert every discovered node without asking")
	bindFlagToConfig(cmd.Flags().Lookup(assumeYesFlagName), assumeYesConfigKey)

	cmd.Flags().BoolVar(&dryRunFlag, dryRunFlagName, defaultDryRun, "print unified diffs instead of writing files")
	bindFlagToConfig(cmd.Flags().Lookup(dryRunFlagName), dryRunConfigKey)

	cmd.Flags().StringVar(&reportFlag, reportFlagName, defaultReport, "write a YAML report of every outcome to this file")
	bindFlagToConfig(cmd.Flags().Lookup(reportFlagName), reportConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", nil, "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, defaultLogFilename, "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// newWorkflow wires the real adapters. Dry runs print diffs to the command
// output; --yes skips every prompt.
func newWorkflow(cmd *cobra.Command, opts workflowOptions) domain.Workflow {
	var fsAdapter adapter.SourceFSAdapter = adapter.NewLocalSourceFSAdapter()
	if opts.DryRun {
		fsAdapter = adapter.NewDryRunSourceFSAdapter(fsAdapter, cmd.OutOrStdout())
	}

	ui := controller.NewUI(cmd, controller.IsTTY(os.Stdin) && controller.IsTTY(os.Stdout))
	if opts.AssumeYes {
		ui = controller.WithAutoConfirm(ui)
	}

	return domain.NewDefaultWorkflow(fsAdapter, adapter.NewReportStore(), ui, viper.GetStringSlice(skipDirsConfigKey))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
