package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/nanovis/internal/cache"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// cacheCommand creates the snapshot management command
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage tree snapshots used by diff coloring",
	}

	cmd.AddCommand(c.cacheSaveCommand())
	cmd.AddCommand(c.cacheListCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheSaveCommand creates the "cache save" subcommand
func (c *CLI) cacheSaveCommand() *cobra.Command {
	var (
		name string
		opts inputOpts
	)

	cmd := &cobra.Command{
		Use:   "save [input]",
		Short: "Store a snapshot of a tree, metafile or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := c.loadInput(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if name == "" {
				name = in.name
			}
			path, err := c.Cache.Save(name, in.tree.Root)
			if err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			c.printf("%s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "snapshot name, the input's base name when empty")
	cmd.Flags().BoolVar(&opts.outputs, "outputs", false, "snapshot metafile outputs instead of inputs")
	cmd.Flags().BoolVar(&opts.types, "types", false, "detect content types when scanning a directory")

	return cmd
}

// cacheListCommand creates the "cache list" subcommand
func (c *CLI) cacheListCommand() *cobra.Command {
	var sizes bool

	cmd := &cobra.Command{
		Use:   "list [name]",
		Short: "List snapshots, oldest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			snapshots, err := c.Cache.List(name)
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				c.Logger.Info("no snapshots", "dir", c.Cache.Dir())
				return nil
			}
			for _, s := range snapshots {
				line := fmt.Sprintf("%s\t%s", s.Name, s.Time.Format("2006-01-02 15:04:05"))
				if sizes {
					root, err := cache.Load(s.Path)
					if err != nil {
						return fmt.Errorf("load %s: %w", s.Path, err)
					}
					line += "\t" + model.FormatBytes(root.Size)
				}
				c.printf("%s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sizes, "sizes", false, "load each snapshot and show its total size")

	return cmd
}

// cachePathCommand creates the "cache path" subcommand
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the snapshot directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.printf("%s\n", c.Cache.Dir())
			return nil
		},
	}
}
