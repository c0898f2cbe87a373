// Package main provides the CLI entrypoint for tcx-intervals.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	tcx "github.com/lucasjlepore/tcx-intervals"
	"github.com/lucasjlepore/tcx-intervals/internal/config"
	"github.com/lucasjlepore/tcx-intervals/internal/logging"
	"github.com/lucasjlepore/tcx-intervals/pipeline"
	"github.com/lucasjlepore/tcx-intervals/window"
)

// usageError marks failures caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tcx-intervals failed: %v\n", err)
		var uerr usageError
		if errors.As(err, &uerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	require    []string
}

type windowFlags struct {
	by      string
	length  float64
	count   int
	group   string
	qdh     float64
	epsilon float64
	format  string
}

func newRootCmd() *cobra.Command {
	var (
		global globalFlags
		flags  windowFlags
	)
	rootCmd := &cobra.Command{
		Use:   "tcx-intervals [flags] <activity.tcx|activity.fit>",
		Short: "Summarize an activity in fixed time or distance windows",
		Long: "tcx-intervals cuts an activity into windows of equal duration or distance\n" +
			"and prints average power, heart rate, speed, climbing and QDH per window.",
		Args:          exactFile,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindows(cmd, args[0], &global, &flags)
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tcx-intervals/config.toml)")
	pf.StringVar(&global.logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	pf.StringVar(&global.logFormat, "log-format", "text", "log format: text|json")
	pf.StringSliceVar(&global.require, "require", nil, "drop trackpoints missing any of these fields (e.g. altitude,distance)")

	f := rootCmd.Flags()
	f.StringVar(&flags.by, "by", window.Duration.String(), "window metric: duration|distance")
	f.Float64Var(&flags.length, "length", window.DefaultLength, "window length in seconds or meters")
	f.IntVar(&flags.count, "count", 0, "split the activity into this many equal windows instead of --length")
	f.StringVar(&flags.group, "group", "", "full grouping as metric,sizing,value (e.g. distance,length,1000)")
	f.Float64Var(&flags.qdh, "qdh", window.DefaultQDHBucket, "QDH bucket distance in meters; 0 scores every sample pair")
	f.Float64Var(&flags.epsilon, "epsilon", window.DefaultEpsilon, "minimum trailing window fraction to emit")
	f.StringVar(&flags.format, "format", "", "output format: pretty|csv|table|json (default pretty on a terminal, csv otherwise)")

	rootCmd.AddCommand(newDumpCmd(&global))
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runWindows(cmd *cobra.Command, input string, global *globalFlags, flags *windowFlags) error {
	fileCfg, err := loadFileConfig(cmd, global)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "by", &flags.by, fileCfg.Windows.By)
	applyFloatConfig(cmd, "length", &flags.length, fileCfg.Windows.Length)
	applyFloatConfig(cmd, "qdh", &flags.qdh, fileCfg.Windows.QDH)
	applyFloatConfig(cmd, "epsilon", &flags.epsilon, fileCfg.Windows.Epsilon)
	applyStringConfig(cmd, "format", &flags.format, fileCfg.Output.Format)
	if !cmd.Flags().Changed("length") {
		applyIntConfig(cmd, "count", &flags.count, fileCfg.Windows.Count)
	}

	grouping, err := buildGrouping(cmd, flags)
	if err != nil {
		return usageError{err}
	}
	require, err := parseRequire(global.require)
	if err != nil {
		return usageError{err}
	}
	logger, err := logging.New(logging.Options{Level: global.logLevel, Format: global.logFormat, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return usageError{err}
	}

	format := flags.format
	if format == "" {
		format = defaultFormat()
	}

	_, err = pipeline.Run(pipeline.Options{
		InputPath: input,
		Grouping:  grouping,
		Require:   require,
		Format:    format,
		Out:       cmd.OutOrStdout(),
		Logger:    logger,
	})
	return err
}

// buildGrouping turns the merged flag values into a validated window config.
// --group replaces --by, --length and --count and may not be combined with them.
func buildGrouping(cmd *cobra.Command, flags *windowFlags) (window.Config, error) {
	var (
		cfg window.Config
		err error
	)
	if err := exclusiveFlags(cmd, "length", "count"); err != nil {
		return cfg, err
	}
	for _, name := range []string{"by", "length", "count"} {
		if err := exclusiveFlags(cmd, "group", name); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("group") {
		cfg, err = window.ParseGrouping(flags.group)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg = window.DefaultConfig()
		if cfg.Metric, err = window.ParseMetric(flags.by); err != nil {
			return cfg, err
		}
		cfg.Value = flags.length
		if flags.count > 0 {
			cfg.Sizing = window.Count
			cfg.Value = float64(flags.count)
		}
	}
	cfg.QDHBucket = flags.qdh
	cfg.Epsilon = flags.epsilon
	return cfg, cfg.Validate()
}

func newDumpCmd(global *globalFlags) *cobra.Command {
	var (
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "dump [flags] <activity.tcx|activity.fit>",
		Short: "Write the extracted trackpoints as csv, json or parquet",
		Args:  exactFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadFileConfig(cmd, global); err != nil {
				return err
			}
			require, err := parseRequire(global.require)
			if err != nil {
				return usageError{err}
			}
			logger, err := logging.New(logging.Options{Level: global.logLevel, Format: global.logFormat, Writer: cmd.ErrOrStderr()})
			if err != nil {
				return usageError{err}
			}
			res, err := pipeline.Dump(pipeline.DumpOptions{
				InputPath: args[0],
				OutPath:   outPath,
				Format:    format,
				Require:   require,
				Out:       cmd.OutOrStdout(),
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			if res.OutputPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d trackpoints to %s\n", res.SampleCount, res.OutputPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", pipeline.DumpCSV, "dump format: csv|json|parquet")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the default config path and a commented template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", config.DefaultConfigPath(), defaultConfigTemplate())
			return nil
		},
	}
}

// loadFileConfig reads the config file and lets it fill the persistent flags
// the user did not set.
func loadFileConfig(cmd *cobra.Command, global *globalFlags) (config.FileConfig, error) {
	path := global.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &global.logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &global.logFormat, fileCfg.Log.Format)
	if len(fileCfg.Filter.Require) > 0 && !cmd.Flags().Changed("require") {
		global.require = fileCfg.Filter.Require
	}
	return fileCfg, nil
}

func parseRequire(names []string) ([]tcx.Field, error) {
	fields := make([]tcx.Field, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := tcx.ParseField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func defaultFormat() string {
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return pipeline.FormatPretty
	}
	return pipeline.FormatCSV
}

func exclusiveFlags(cmd *cobra.Command, a, b string) error {
	if cmd.Flags().Changed(a) && cmd.Flags().Changed(b) {
		return fmt.Errorf("--%s and --%s cannot be used together", a, b)
	}
	return nil
}

func exactFile(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tcx-intervals configuration
# Uncomment a value to enable it. CLI flags override config values.

[windows]
# by = %q          # duration|distance
# length = %g           # seconds or meters
# count = 0              # >0 splits the activity into this many windows
# qdh = %g              # QDH bucket in meters
# epsilon = %g

[filter]
# require = ["altitude", "distance"]

[output]
# format = "pretty"      # pretty|csv|table|json

[log]
# level = "warn"
# format = "text"
`, window.Duration.String(), window.DefaultLength, window.DefaultQDHBucket, window.DefaultEpsilon)
}
