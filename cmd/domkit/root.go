package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/domkit/internal/app"
	"github.com/dshills/domkit/internal/config"
	"github.com/dshills/domkit/internal/logging"
	"github.com/dshills/domkit/internal/tracing"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	stdout     io.Writer
	stderr     io.Writer
}

// runOptions holds flags of run and dump.
type runOptions struct {
	document   string
	scripts    []string
	dispatches []string
	output     string
	dump       bool
	dumpPath   string
	compact    bool
	watch      bool
	logLevel   string
	timeout    time.Duration
	trace      string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "domkit",
		Short: "Run event scripts against an HTML document",
		Long: `domkit loads an HTML document, runs Lua scripts that attach event
listeners through a registry, signals DOMContentLoaded, fires configured
events, and reports the registered listeners or the resulting document.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (.toml, .yaml or .yml)")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newDumpCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))
	return cmd
}

func newRunCmd(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scripts and dispatch events",
		Example: `  domkit run -d index.html -s app.lua --dispatch click@button.save -o -
  domkit run -c domkit.toml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, rootOpts, opts)
			if err != nil {
				return err
			}
			return execute(cmd.Context(), rootOpts, cfg)
		},
	}
	addRunFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `write the resulting HTML to a file ("-" for stdout)`)
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the listener registry as JSON")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run when the document or a script changes")
	return cmd
}

func newDumpCmd(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Run scripts and print the listener registry as JSON",
		Example: `  domkit dump -d index.html -s app.lua
  domkit dump -c domkit.toml --path 'nodes.#.node'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, rootOpts, opts)
			if err != nil {
				return err
			}
			cfg.Dump.Enabled = true
			cfg.Output = ""
			cfg.Watch.Enabled = false
			return execute(cmd.Context(), rootOpts, cfg)
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

func newVersionCmd(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(rootOpts.stdout, "domkit %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.document, "document", "d", "", "HTML document to load")
	f.StringArrayVarP(&opts.scripts, "script", "s", nil, "Lua script to run (repeatable)")
	f.StringArrayVar(&opts.dispatches, "dispatch", nil, "event to fire after ready, as event@selector (repeatable)")
	f.StringVar(&opts.dumpPath, "path", "", "gjson path selecting part of the dump")
	f.BoolVar(&opts.compact, "compact", false, "print the dump without indentation")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.DurationVar(&opts.timeout, "timeout", 0, "bound on scripts and dispatches")
	f.StringVar(&opts.trace, "trace", "", "enable tracing with an exporter (stdout, file, none)")
}

// resolveConfig layers defaults, the config file, DOMKIT_* variables and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, rootOpts *rootOptions, opts *runOptions) (config.Config, error) {
	cfg, err := config.NewLoader().Load(rootOpts.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("document") {
		cfg.Document = opts.document
	}
	if flags.Changed("script") {
		cfg.Scripts = opts.scripts
	}
	if flags.Changed("dispatch") {
		cfg.Dispatch = nil
		for _, s := range opts.dispatches {
			spec, err := config.ParseDispatch(s)
			if err != nil {
				return cfg, err
			}
			cfg.Dispatch = append(cfg.Dispatch, spec)
		}
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("dump") {
		cfg.Dump.Enabled = opts.dump
	}
	if flags.Changed("path") {
		cfg.Dump.Path = opts.dumpPath
	}
	if flags.Changed("compact") {
		cfg.Dump.Pretty = !opts.compact
	}
	if flags.Changed("watch") {
		cfg.Watch.Enabled = opts.watch
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("timeout") {
		cfg.Script.Timeout = config.Duration(opts.timeout)
	}
	if flags.Changed("trace") {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Exporter = opts.trace
	}
	return cfg, cfg.Validate()
}

// execute builds the logger, tracer and application for cfg and runs it.
func execute(ctx context.Context, rootOpts *rootOptions, cfg config.Config) (err error) {
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Output: rootOpts.stderr,
		Prefix: "domkit",
	})

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Exporter:    cfg.Tracing.Exporter,
		FilePath:    cfg.Tracing.FilePath,
		ServiceName: cfg.Tracing.ServiceName,
		Writer:      rootOpts.stderr,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := provider.Shutdown(shutdownCtx); serr != nil && err == nil {
			err = serr
		}
	}()

	application, err := app.New(app.Options{
		Config: cfg,
		Logger: logger,
		Tracer: provider.Tracer(),
		Stdout: rootOpts.stdout,
	})
	if err != nil {
		return err
	}

	if cfg.Watch.Enabled {
		logger.Info("watching %s and %d scripts", cfg.Document, len(cfg.Scripts))
		return application.Watch(ctx)
	}

	_, err = application.Run(ctx)
	return err
}
