package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/arena/metrics"
	"github.com/joshuapare/arenakit/arena/printer"
	"github.com/joshuapare/arenakit/internal/logger"
)

// fileConfig is the layout of the optional --config YAML file.
type fileConfig struct {
	Arena arena.Config  `yaml:"arena"`
	Log   logger.Config `yaml:"log"`
}

// app holds the state shared by every subcommand of one invocation.
type app struct {
	cfg        arena.Config
	log        logger.Config
	configPath string

	verbose  bool
	quiet    bool
	jsonOut  bool
	verify   bool
	noSlots  bool
	humanize bool
	metrics  bool

	out io.Writer
	err io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "arenactl",
		Short: "Drive and inspect a fixed-arena page allocator",
		Long: `arenactl runs allocation sequences against a fixed-size arena allocator
and prints the resulting page table. It is a demonstration and debugging aid:
every invocation builds a fresh arena, runs its operations, and dumps the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			a.err = cmd.ErrOrStderr()
			return a.loadConfig(cmd)
		},
	}

	fs := flag.NewFlagSet("arena", flag.ContinueOnError)
	a.cfg.RegisterFlags(fs)
	cmd.PersistentFlags().AddGoFlagSet(fs)

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML file with arena and log settings; flags override it")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log page transitions")
	cmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all output except errors and the dump")
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVar(&a.verify, "verify", false, "Check page table invariants after every operation")
	cmd.PersistentFlags().BoolVar(&a.noSlots, "no-slots", false, "Omit per-slot lines from the dump")
	cmd.PersistentFlags().BoolVar(&a.humanize, "human", false, "Print sizes as KiB/MiB")
	cmd.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "Print allocator metrics in Prometheus text format after the dump")
	cmd.PersistentFlags().StringVar(&a.log.Level, "log.level", "warn", "Minimum log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.log.Format, "log.format", "console", "Log encoding (console, json)")
	cmd.PersistentFlags().StringVar(&a.log.Output, "log.output", "stderr", "Log destination (stderr, stdout or a file path)")

	cmd.AddCommand(
		newDemoCmd(a),
		newReplayCmd(a),
		newClassifyCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file under any flags given on the command line.
func (a *app) loadConfig(cmd *cobra.Command) error {
	if a.configPath != "" {
		data, err := os.ReadFile(a.configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		fc := fileConfig{Arena: arena.DefaultConfig(), Log: a.log}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse config %s: %w", a.configPath, err)
		}

		flags := cmd.Flags()
		overlay := func(name string, dst *int, v int) {
			if !flags.Changed(name) {
				*dst = v
			}
		}
		overlay("arena.page-size", &a.cfg.PageSize, fc.Arena.PageSize)
		overlay("arena.page-count", &a.cfg.PageCount, fc.Arena.PageCount)
		overlay("arena.min-class", &a.cfg.MinClass, fc.Arena.MinClass)
		if !flags.Changed("log.level") && fc.Log.Level != "" {
			a.log.Level = fc.Log.Level
		}
		if !flags.Changed("log.format") && fc.Log.Format != "" {
			a.log.Format = fc.Log.Format
		}
		if !flags.Changed("log.output") && fc.Log.Output != "" {
			a.log.Output = fc.Log.Output
		}
	}
	if a.verbose {
		a.log.Level = "debug"
	}
	return a.cfg.Validate()
}

// newAllocator builds a fresh allocator for one command run. The returned function
// releases the arena and then closes the log sink.
func (a *app) newAllocator() (*arena.Allocator, func() error, error) {
	l, closeLog, err := logger.New(a.log)
	if err != nil {
		return nil, nil, err
	}
	alloc, err := arena.New(a.cfg, arena.WithLogger(l))
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	release := func() error {
		return errors.Join(alloc.Close(), closeLog())
	}
	return alloc, release, nil
}

// printInfo prints an info message if not in quiet mode
func (a *app) printInfo(format string, args ...any) {
	if !a.quiet && !a.jsonOut {
		fmt.Fprintf(a.out, format, args...)
	}
}

// printJSON outputs data as JSON
func (a *app) printJSON(v any) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// dump prints the allocator's page table in the selected format.
func (a *app) dump(alloc *arena.Allocator) error {
	opts := printer.DefaultOptions()
	if a.jsonOut {
		opts.Format = printer.FormatJSON
	}
	opts.ShowSlots = !a.noSlots
	opts.HumanSizes = a.humanize
	if err := printer.New(a.out, opts).Print(alloc.Snapshot()); err != nil {
		return err
	}
	if a.metrics {
		return a.printMetrics(alloc)
	}
	return nil
}

// printMetrics writes the allocator's collector output in the text exposition format.
func (a *app) printMetrics(alloc *arena.Allocator) error {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(metrics.NewCollector(alloc, nil)); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.out, mf); err != nil {
			return err
		}
	}
	return nil
}

// check runs the invariant walk when --verify is set.
func (a *app) check(alloc *arena.Allocator, step string) error {
	if !a.verify {
		return nil
	}
	if err := alloc.Verify(); err != nil {
		return fmt.Errorf("after %s: %w", step, err)
	}
	return nil
}
