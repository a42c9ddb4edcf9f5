package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/nanovis/internal/chart"
	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/config"
	"github.com/lumipallolabs/nanovis/internal/model"
	"github.com/lumipallolabs/nanovis/internal/scanner"
	"github.com/lumipallolabs/nanovis/internal/ui/tui"
	"github.com/lumipallolabs/nanovis/internal/watcher"
)

// viewCommand creates the interactive terminal viewer command
func (c *CLI) viewCommand() *cobra.Command {
	var (
		chartName string
		colorMode string
		watch     bool
		opts      inputOpts
	)

	cmd := &cobra.Command{
		Use:   "view [input]",
		Short: "Explore a tree, metafile or directory in the terminal",
		Long:  `Opens the interactive viewer. Directories are scanned first; tab switches between treemap, flamegraph and sunburst, clicks drill in and the wheel zooms the flamegraph.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := config.NewStateManager("")
			if err := state.Load(); err != nil {
				c.Logger.Warn("state not loaded", "err", err)
			}
			defer state.Close()

			path := "."
			switch {
			case len(args) > 0:
				path = args[0]
			case state.State().LastInput != "":
				path = state.State().LastInput
			}

			cfg := c.Config
			if colorMode != "" {
				cfg.ColorMode = colorMode
			}
			kind := cfg.Kind()
			switch {
			case chartName != "":
				k, err := chart.ParseKind(chartName)
				if err != nil {
					return err
				}
				kind = k
			case state.State().LastChart != "":
				if k, err := chart.ParseKind(state.State().LastChart); err == nil {
					kind = k
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.Config = cfg

			app := tui.AppOptions{
				Kind:    kind,
				Options: cfg.Options(),
				Version: version,
				State:   state,
				Cache:   c.Cache,
			}

			// directories in spectrum mode scan inside the viewer
			if isDir(path) && cfg.ColorMode == config.ColorSpectrum {
				abs, err := filepath.Abs(path)
				if err != nil {
					return err
				}
				w := scanner.NewWalker(opts.workers)
				w.DetectTypes = opts.types
				app.ScanDir = abs
				app.Scanner = w
				app.Name = filepath.Base(abs)
				return tui.Run(app)
			}

			in, err := c.loadInput(cmd.Context(), path, opts)
			if err != nil {
				return err
			}
			getColor, err := c.colors(in, cfg.ColorMode)
			if err != nil {
				return err
			}
			app.Tree = in.tree
			app.Name = in.name
			app.Dir = in.dir
			app.Options.GetColor = getColor
			if abs, err := filepath.Abs(path); err == nil {
				state.SetLastInput(abs)
			}

			if watch && in.dir == "" {
				w, err := watcher.New(path)
				if err != nil {
					return fmt.Errorf("watch %s: %w", path, err)
				}
				w.Start()
				defer w.Stop()
				app.Changes = w.Events()
				app.Reload = func() (*model.Tree, color.Getter, error) {
					in, err := c.loadInput(cmd.Context(), path, opts)
					if err != nil {
						return nil, nil, err
					}
					getColor, err := c.colors(in, cfg.ColorMode)
					return in.tree, getColor, err
				}
			}
			return tui.Run(app)
		},
	}

	cmd.Flags().StringVarP(&chartName, "chart", "c", "", "chart type: treemap, flamegraph, sunburst")
	cmd.Flags().StringVar(&colorMode, "color", "", "color mode: spectrum, format, diff, node")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the input file changes")
	cmd.Flags().BoolVar(&opts.outputs, "outputs", false, "chart metafile outputs instead of inputs")
	cmd.Flags().BoolVar(&opts.types, "types", false, "detect content types when scanning a directory")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "scanner goroutines")

	return cmd
}
