package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/nanovis/internal/loader"
)

// scanCommand creates the scan command, which writes a directory as a tree
// document
func (c *CLI) scanCommand() *cobra.Command {
	var (
		output string
		save   bool
		opts   inputOpts
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a directory and write it as a YAML tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isDir(args[0]) {
				return fmt.Errorf("%s is not a directory", args[0])
			}
			in, err := c.loadInput(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			if save {
				path, err := c.Cache.Save(in.name, in.tree.Root)
				if err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				c.Logger.Info("snapshot saved", "path", path)
			}

			data, err := loader.EncodeTree(in.tree.Root)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = c.out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			c.Logger.Info("tree written", "output", output, "bytes", len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	cmd.Flags().BoolVar(&save, "save", false, "also store a snapshot for diff coloring")
	cmd.Flags().BoolVar(&opts.types, "types", false, "detect content types")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "scanner goroutines")

	return cmd
}
