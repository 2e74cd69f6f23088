// Package cmd wires the saltview CLI: rendering Salt state and
// orchestration returns from payload files or straight from the API.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/saltview/internal/config"
	"github.com/harrison/saltview/internal/logger"
	"github.com/harrison/saltview/internal/output"
	"github.com/harrison/saltview/internal/render"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// rootFlags holds the persistent flag values shared by every subcommand.
type rootFlags struct {
	configPath string
	maxBarSize int
	timeUnit   string
	ascii      bool
	noColor    bool
	logLevel   string
}

// NewRootCommand creates and returns the root cobra command for saltview.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "saltview",
		Short: "Render Salt execution results as terminal reports",
		Long: `saltview renders the return objects of Salt state and orchestration
executions into column-aligned terminal tables: a proportional duration
bar per state or step, its percentage of total elapsed time, the raw
duration, and a pass/fail indicator.

Payloads are read from JSON or YAML files, or fetched from a salt-api
server configured in the config file.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", ".saltview.yaml", "path to the configuration file")
	pf.IntVar(&flags.maxBarSize, "max-bar-size", 0, "plot width equivalent to 100% of elapsed time")
	pf.StringVar(&flags.timeUnit, "time-unit", "", "duration display unit: ms or s")
	pf.BoolVar(&flags.ascii, "ascii", false, "force the ASCII-safe glyph set")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable result column colors")
	pf.StringVar(&flags.logLevel, "log-level", "", "logging verbosity: debug, info, warn, error")

	cmd.AddCommand(NewStateCommand(flags))
	cmd.AddCommand(NewOrchCommand(flags))
	cmd.AddCommand(NewJobCommand(flags))

	return cmd
}

// setup loads the config file and resolves flags over it, returning the
// effective config, render options, and a logger.
func (f *rootFlags) setup() (*config.Config, output.Options, *logger.ConsoleLogger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, output.Options{}, nil, err
	}

	if f.maxBarSize != 0 {
		cfg.Display.MaxBarSize = f.maxBarSize
	}
	if f.timeUnit != "" {
		cfg.Display.TimeUnit = f.timeUnit
	}
	if f.ascii {
		cfg.Display.Glyphs = string(render.GlyphsSafe)
	}
	if f.noColor {
		cfg.Display.Colorize = false
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}

	opts := output.Options{
		Glyphs:     resolveGlyphs(render.GlyphSet(cfg.Display.Glyphs)),
		Colorize:   cfg.Display.Colorize && stdoutIsTerminal(),
		MaxBarSize: cfg.Display.MaxBarSize,
		TimeUnit:   render.Unit(cfg.Display.TimeUnit),
	}

	log := logger.New(os.Stderr, cfg.LogLevel)
	return cfg, opts, log, nil
}
