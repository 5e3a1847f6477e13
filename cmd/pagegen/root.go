package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wilbur182/pagegen/internal/config"
	"github.com/wilbur182/pagegen/internal/features"
	"github.com/wilbur182/pagegen/internal/plugin"
	"github.com/wilbur182/pagegen/internal/render"
	"github.com/wilbur182/pagegen/internal/styles"
)

// options holds the persistent flags and the state resolved from them.
type options struct {
	configPath string
	workDir    string
	inputDir   string
	outputFile string
	marker     string
	debounce   time.Duration
	debug      bool
	noColor    bool
	enable     []string
	disable    []string

	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &options{stdout: os.Stdout, stderr: os.Stderr}

	root := &cobra.Command{
		Use:           "pagegen",
		Short:         "Generate and maintain a JSON manifest of page route files",
		Long:          "pagegen scans a pages directory for per-folder marker files (router.ts by default)\nand keeps a JSON manifest of their paths in sync while you work.",
		Version:       effectiveVersion(Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}
	root.SetOut(opts.stdout)
	root.SetErr(opts.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config file (default ./"+config.FileName+")")
	pf.StringVarP(&opts.workDir, "dir", "C", ".", "project directory relative paths are resolved against")
	pf.StringVarP(&opts.inputDir, "input", "i", "", "pages directory to scan")
	pf.StringVarP(&opts.outputFile, "output", "o", "", "manifest file to write")
	pf.StringVar(&opts.marker, "marker", "", "marker file name (default "+config.DefaultMarker+")")
	pf.DurationVar(&opts.debounce, "debounce", 0, "quiet period before regenerating (default "+config.DefaultDebounce.String()+")")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	pf.StringSliceVar(&opts.enable, "enable", nil, "enable feature flags for this run")
	pf.StringSliceVar(&opts.disable, "disable", nil, "disable feature flags for this run")

	root.AddCommand(
		newGenerateCmd(opts),
		newWatchCmd(opts),
		newScanCmd(opts),
		newShowCmd(opts),
		newInitCmd(opts),
		newFeaturesCmd(opts),
	)
	return root
}

// setup loads config, applies env and flag overrides, and builds the logger.
func (o *options) setup(cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if o.debug {
		logLevel = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if o.configPath == "" {
		o.configPath = filepath.Join(o.workDir, config.FileName)
	}
	cfg, err := config.LoadFrom(o.configPath)
	if err != nil {
		return err
	}
	if err := config.LoadEnv(cfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Pages.InputDir = o.inputDir
	}
	if flags.Changed("output") {
		cfg.Pages.OutputFile = o.outputFile
	}
	if flags.Changed("marker") {
		cfg.Pages.Marker = o.marker
	}
	if flags.Changed("debounce") {
		cfg.Pages.Debounce = o.debounce
	}
	if o.noColor {
		cfg.UI.Color = false
	}

	features.Init(cfg)
	for _, name := range o.enable {
		if err := overrideFeature(name, true); err != nil {
			return err
		}
	}
	for _, name := range o.disable {
		if err := overrideFeature(name, false); err != nil {
			return err
		}
	}

	styles.Apply(cfg.UI.Theme)
	o.cfg = cfg
	return nil
}

func overrideFeature(name string, enabled bool) error {
	if !features.IsKnownFeature(name) {
		return fmt.Errorf("unknown feature %q", name)
	}
	features.SetOverride(name, enabled)
	return nil
}

// pluginContext validates the config and returns a plugin context for it.
func (o *options) pluginContext(logger *slog.Logger) (*plugin.Context, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	workDir, err := filepath.Abs(o.workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	return &plugin.Context{
		WorkDir:    workDir,
		ConfigPath: o.configPath,
		Config:     o.cfg,
		Logger:     logger,
	}, nil
}

// resolve makes path absolute against the project directory.
func (o *options) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	workDir, err := filepath.Abs(o.workDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(workDir, path), nil
}

// color reports whether stdout output should be styled.
func (o *options) color() bool {
	if !o.cfg.UI.Color {
		return false
	}
	f, ok := o.stdout.(*os.File)
	return ok && render.IsTerminal(f)
}

// requireInput validates the config for commands that only scan.
func (o *options) requireInput() error {
	err := o.cfg.Validate()
	if err != nil && !errors.Is(err, config.ErrMissingOutputFile) {
		return err
	}
	return nil
}
