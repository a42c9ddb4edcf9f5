// Package cli implements the nanovis command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/nanovis/internal/cache"
	"github.com/lumipallolabs/nanovis/internal/config"
	"github.com/lumipallolabs/nanovis/internal/logging"
)

const appName = "nanovis"

var version = "dev"

// SetVersion sets the version shown by --version and the viewer header
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// CLI holds shared state for all commands
type CLI struct {
	Logger *log.Logger
	Config config.Config
	Cache  *cache.Cache

	out        io.Writer
	configPath string
	cacheDir   string
	verbose    bool
}

// New creates a CLI writing command output to out and logs to logw
func New(out, logw io.Writer) *CLI {
	return &CLI{
		Logger: logging.New(logw, log.InfoLevel),
		Config: config.Default(),
		out:    out,
	}
}

// RootCommand creates the root cobra command with all subcommands registered
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "nanovis draws size-weighted trees as treemaps, flamegraphs and sunbursts",
		Long:         `nanovis visualizes esbuild metafiles, directory scans and plain JSON or YAML trees as interactive treemaps, flamegraphs and sunbursts in the terminal, or renders them to PNG.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			c.Cache = cache.New(c.cacheDir)
			c.Logger.Debug("config loaded", "path", c.configPath, "chart", cfg.Chart, "color", cfg.ColorMode)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "config file")
	root.PersistentFlags().StringVar(&c.cacheDir, "cache-dir", cache.DefaultDir(), "snapshot directory")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.viewCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// Execute runs the nanovis CLI
func Execute(ctx context.Context) error {
	c := New(os.Stdout, os.Stderr)
	return c.RootCommand().ExecuteContext(ctx)
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
