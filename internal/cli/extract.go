package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/extract/inherit"
)

// extractCommand creates the extract command for mining class hierarchies.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		ext     string
		outDir  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "extract [root] [base]",
		Short: "Mine the class inheritance tree below a base class",
		Long: `Mine the class inheritance tree below a base class.

Every source file under root with the given extension is scanned for class
declarations ("class Foo: Bar", "class Foo extends Bar"). The subclasses of
base are collected breadth-first and written as:

  <base>.json           nested class -> subclasses map
  <base>.mm             Mermaid class diagram
  <base>_nodes.json     force-graph nodes and links
  <base>_links.csv      source,target
  <base>_metadata.csv   id,label
  <base>.dot            Graphviz digraph`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd.Context(), args[0], args[1], ext, outDir, workers)
		},
	}

	cmd.Flags().StringVar(&ext, "ext", inherit.DefaultExt, "source file extension")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "files read concurrently (default: GOMAXPROCS)")

	return cmd
}

func (c *CLI) runExtract(ctx context.Context, root, base, ext, outDir string, workers int) error {
	logger := loggerFromContext(ctx)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}

	prog := newProgress(logger)
	opts := []inherit.Option{inherit.WithLogger(logger)}
	if workers > 0 {
		opts = append(opts, inherit.WithWorkers(workers))
	}
	res, err := inherit.Extract(ctx, root, base, ext, outDir, opts...)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Extracted %d classes below %s", res.Tree.Len(), base))

	if res.Tree.Len() == 1 {
		printWarning("No subclasses of %s found under %s", base, root)
	} else {
		printSuccess("Mined %d classes", res.Tree.Len())
	}
	for _, f := range res.Files {
		printFile(f)
	}
	return nil
}
