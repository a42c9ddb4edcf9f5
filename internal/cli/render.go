package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/chart"
	"github.com/lumipallolabs/nanovis/internal/config"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// maxRenderFrames bounds the frames run before the image is written
const maxRenderFrames = 1000

// renderOpts holds the command-line flags for the render command
type renderOpts struct {
	output   string  // PNG path
	chart    string  // chart type, config default when empty
	color    string  // color mode, config default when empty
	selectID string  // node to focus before rendering
	width    int     // logical width
	height   int     // logical height
	ratio    float64 // device pixels per logical pixel
	dark     bool
	inputOpts
}

// renderCommand creates the render command for writing a chart as PNG
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [input]",
		Short: "Render a tree, metafile or directory to a PNG image",
		Long: `Render a tree, metafile or directory to a PNG image.

--width and --height bound the image. A treemap fills them, a flamegraph
keeps the width and grows to its depth, and a sunburst is a square no
larger than the shorter side.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "nanovis.png", "output PNG file")
	cmd.Flags().StringVarP(&opts.chart, "chart", "c", "", "chart type: treemap, flamegraph, sunburst")
	cmd.Flags().StringVar(&opts.color, "color", "", "color mode: spectrum, format, diff, node")
	cmd.Flags().StringVar(&opts.selectID, "select", "", "id of the node to focus")
	cmd.Flags().IntVar(&opts.width, "width", 0, "image width in logical pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "image height in logical pixels")
	cmd.Flags().Float64Var(&opts.ratio, "ratio", 0, "device pixels per logical pixel")
	cmd.Flags().BoolVar(&opts.inputOpts.outputs, "outputs", false, "chart metafile outputs instead of inputs")
	cmd.Flags().BoolVar(&opts.dark, "dark", false, "use the dark palette")
	cmd.Flags().BoolVar(&opts.types, "types", false, "detect content types when scanning a directory")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts *renderOpts) error {
	cfg := c.Config
	if opts.chart != "" {
		cfg.Chart = opts.chart
	}
	if opts.color != "" {
		cfg.ColorMode = opts.color
	}
	if opts.width > 0 {
		cfg.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Height = opts.height
	}
	if opts.ratio > 0 {
		cfg.Ratio = opts.ratio
	}
	if opts.dark {
		cfg.Dark = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	in, err := c.loadInput(cmd.Context(), path, opts.inputOpts)
	if err != nil {
		return err
	}

	c.Config = cfg
	getColor, err := c.colors(in, cfg.ColorMode)
	if err != nil {
		return err
	}
	chartOpts := cfg.Options()
	chartOpts.Animate = false
	chartOpts.GetColor = getColor

	var focus *model.Node
	if opts.selectID != "" {
		if focus = model.Find(in.tree.Root, opts.selectID); focus == nil {
			return fmt.Errorf("no node with id %q", opts.selectID)
		}
	}

	if err := renderPNG(in.tree, cfg.Kind(), chartOpts, cfg, focus, opts.output); err != nil {
		return err
	}
	c.Logger.Info("rendered", "chart", cfg.Kind(), "output", opts.output)
	c.printf("%s\n", opts.output)
	return nil
}

// renderPNG draws tree once, focused on focus when set, and writes it
func renderPNG(tree *model.Tree, kind chart.Kind, opts graph.Options, cfg config.Config, focus *model.Node, output string) error {
	loop := graph.NewLoop(float64(cfg.Width), float64(cfg.Height), cfg.Ratio)
	r := canvas.NewRaster(cfg.Width, cfg.Height)

	e, err := chart.New(kind, tree, loop, r, opts)
	if err != nil {
		return err
	}
	defer e.Dispose()

	loop.RunFrame()
	if focus != nil {
		e.Select(focus, false)
	}
	loop.Drain(maxRenderFrames)

	if err := r.SavePNG(output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}
