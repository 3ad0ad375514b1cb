// Package cmd wires the gridx CLI: flag parsing, config and dataset loading,
// logger setup, and launching the interactive grid.
package cmd

import (
	"fmt"
	"io"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/oakwood-commons/gridx/internal/config"
	"github.com/oakwood-commons/gridx/internal/dataset"
	"github.com/oakwood-commons/gridx/internal/ui"
	"github.com/oakwood-commons/gridx/pkg/logger"
	"github.com/oakwood-commons/gridx/pkg/settings"
)

var (
	configPath      string
	logLevel        int8
	logFile         string
	noColor         bool
	noWorker        bool
	workerTimeoutMS int
	searchFields    []string
	columns         []string
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " <dataset>",
	Short: "Interactive grid for large tabular record sets",
	Long: settings.CliBinaryName + ` renders thousands of records in a virtualized terminal grid.
Filtering and sorting are offloaded to a background worker when available and
fall back to synchronous evaluation otherwise; only the rows in view are
rendered. Supported inputs: .json, .jsonl, .ndjson, .csv, .yaml.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flags.Int8Var(&logLevel, "log-level", 0, "minimum zap log level (negative enables debug)")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.BoolVar(&noColor, "no-color", false, "disable colors")
	flags.BoolVar(&noWorker, "no-worker", false, "force synchronous filtering and sorting")
	flags.IntVar(&workerTimeoutMS, "worker-timeout-ms", 0, "per-request worker timeout override")
	flags.StringSliceVar(&searchFields, "search-fields", nil, "fields scanned by the search box (default: all)")
	flags.StringSliceVar(&columns, "columns", nil, "columns to display, in order (default: all fields)")

	rootCmd.AddCommand(versionCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	params := settings.NewCliParams()
	params.MinLogLevel = logLevel
	params.NoColor = noColor
	params.DatasetPath = args[0]

	// A typed-nil *os.File must not reach the io.Writer parameter.
	var sink io.Writer
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		sink = f
	}
	log := logger.Get(params.MinLogLevel, sink)

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	applyFlagOverrides(&cfg, cmd.Flags())

	records, err := dataset.LoadFile(params.DatasetPath)
	if err != nil {
		return err
	}
	log.Info("dataset loaded", "path", params.DatasetPath, "rows", len(records))

	cols := columns
	if len(cols) == 0 {
		cols = dataset.FieldNames(records)
	}
	if len(cols) == 0 {
		return fmt.Errorf("dataset %s has no fields to display", params.DatasetPath)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%s is interactive and needs a terminal", settings.CliBinaryName)
	}

	model := ui.NewModel(params.DatasetPath, records, cols, cfg)
	prog := tea.NewProgram(model)
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func resolveConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// applyFlagOverrides layers explicit flags over the file config. Only flags
// the user actually set win; defaults never clobber the file.
func applyFlagOverrides(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("no-worker") && noWorker {
		disabled := false
		cfg.Worker.Enabled = &disabled
	}
	if flags.Changed("worker-timeout-ms") && workerTimeoutMS > 0 {
		cfg.Worker.TimeoutMS = workerTimeoutMS
	}
	if flags.Changed("search-fields") {
		cfg.Search.Fields = searchFields
	}
	if flags.Changed("no-color") && noColor {
		cfg.Theme.NoColor = true
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		v := settings.VersionInformation
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n",
			settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
