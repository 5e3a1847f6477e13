package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wilbur182/pagegen/internal/config"
	"github.com/wilbur182/pagegen/internal/dashboard"
	"github.com/wilbur182/pagegen/internal/features"
	"github.com/wilbur182/pagegen/internal/manifest"
	"github.com/wilbur182/pagegen/internal/pages"
	"github.com/wilbur182/pagegen/internal/plugin"
	"github.com/wilbur182/pagegen/internal/render"
	"github.com/wilbur182/pagegen/internal/scanner"
	"github.com/wilbur182/pagegen/internal/watch"
)

func newGenerateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Scan once and write the manifest if it changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := opts.pluginContext(opts.logger)
			if err != nil {
				return err
			}
			p := pages.New()
			if err := p.Init(ctx); err != nil {
				return err
			}

			res := p.Generator().Run(pages.TriggerManual)
			fmt.Fprintln(cmd.ErrOrStderr(), render.Cycle(res))
			return res.Err
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	var withUI bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Write the manifest, then keep it in sync until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger
			if withUI {
				// The dashboard owns the terminal; it shows errors itself.
				logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			}
			pctx, err := opts.pluginContext(logger)
			if err != nil {
				return err
			}

			results := make(chan pages.CycleResult, 16)
			var popts []pages.Option
			if withUI {
				popts = append(popts, pages.WithObserver(func(res pages.CycleResult) {
					select {
					case results <- res:
					default: // Dashboard is behind, drop
					}
				}))
			}

			registry := plugin.NewRegistry(pctx)
			p := pages.New(popts...)
			if err := registry.Register(p); err != nil {
				return err
			}
			registry.BuildStart()
			defer registry.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !withUI {
				<-ctx.Done()
				return nil
			}

			gen := p.Generator()
			model := dashboard.New(dashboard.Options{
				Pattern: watch.NewMatcher(gen.InputDir, gen.Marker).Pattern(),
				Output:  gen.Writer.Path(),
				Results: results,
				State:   p.State,
				Refresh: p.Regenerate,
			})
			prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := prog.Run(); err != nil && ctx.Err() == nil {
				return fmt.Errorf("dashboard: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withUI, "ui", false, "show a live dashboard")
	return cmd
}

func newScanCmd(opts *options) *cobra.Command {
	var copyOut bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Print the manifest the current tree would produce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireInput(); err != nil {
				return err
			}
			root, err := opts.resolve(opts.cfg.Pages.InputDir)
			if err != nil {
				return err
			}
			paths, err := scanner.Scan(root, opts.cfg.Pages.Marker)
			if err != nil {
				return err
			}
			if features.IsEnabled(features.RelativePaths.Name) {
				paths = scanner.Relativize(root, paths)
			}

			if copyOut {
				data, err := render.ManifestJSON(paths)
				if err != nil {
					return err
				}
				if err := clipboard.WriteAll(string(data)); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				opts.logger.Info("copied manifest to clipboard", "pages", len(paths))
			}
			return render.Manifest(cmd.OutOrStdout(), paths, opts.color())
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "also copy the manifest to the clipboard")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the manifest currently on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Pages.OutputFile == "" {
				return config.ErrMissingOutputFile
			}
			path, err := opts.resolve(opts.cfg.Pages.OutputFile)
			if err != nil {
				return err
			}
			paths, err := manifest.Read(path)
			if err != nil {
				return err
			}
			return render.Manifest(cmd.OutOrStdout(), paths, opts.color())
		},
	}
}

func newInitCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.configPath)
			}

			cfg := opts.cfg
			if cfg.Pages.InputDir == "" {
				cfg.Pages.InputDir = "src/pages"
			}
			if cfg.Pages.OutputFile == "" {
				cfg.Pages.OutputFile = config.DefaultOutputFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveTo(opts.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newFeaturesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "List feature flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := features.List()
			all := features.ListAll()
			for _, f := range all {
				mark := "off"
				if state[f.Name] {
					mark = "on"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-3s %s\n", f.Name, mark, f.Description)
			}
			return nil
		},
	}

	set := func(use string, enabled bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " NAME",
			Short: use + " a feature flag in the config file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !features.IsKnownFeature(args[0]) {
					return fmt.Errorf("unknown feature %q", args[0])
				}
				return features.SetEnabled(opts.configPath, args[0], enabled)
			},
		}
	}
	cmd.AddCommand(set("enable", true), set("disable", false))
	return cmd
}
