package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/cache"
	"github.com/matzehuels/stateviz/pkg/errors"
	"github.com/matzehuels/stateviz/pkg/extract/props"
)

// propsCommand creates the props command for indexing state properties.
func (c *CLI) propsCommand() *cobra.Command {
	var (
		prefix  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "props [input] [output]",
		Short: "Index state properties from a log file",
		Long: `Index state properties from a log file.

Lines of the form <prefix><Machine>.<State>.<attribute>,<n> are grouped into
a machine -> state -> attributes JSON document. Other lines are skipped.
The index is cached by the content of the log.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("prefix") && c.Config.PropsPrefix != "" {
				prefix = c.Config.PropsPrefix
			}
			return c.runProps(cmd.Context(), args[0], args[1], prefix, noCache, refresh)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", props.DefaultPrefix, "log line prefix (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-index even when cached")

	return cmd
}

func (c *CLI) runProps(ctx context.Context, in, out, prefix string, noCache, refresh bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var idx props.Index
	index := func() ([]byte, error) {
		var err error
		if idx, err = props.IndexFile(ctx, in, out, prefix); err != nil {
			return nil, err
		}
		return os.ReadFile(out)
	}

	content, err := os.ReadFile(in)
	if err != nil || noCache {
		// IndexFile reports a missing input with a coded error.
		if _, err := index(); err != nil {
			return err
		}
		return reportProps(idx, out, prefix, false, prog)
	}

	store, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()

	key := c.newKeyer().PropsKey(cache.Hash(content), prefix)
	if refresh {
		_ = store.Delete(ctx, key)
	}
	data, hit, err := cache.Fetch(ctx, store, key, cache.TTLProps, index)
	if err != nil {
		return err
	}
	if hit {
		if info, err := os.Stat(filepath.Dir(out)); err != nil || !info.IsDir() {
			return errors.New(errors.ErrCodeInvalidPath, "output directory %s does not exist", filepath.Dir(out))
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		if idx, err = props.ReadIndex(data); err != nil {
			return err
		}
	}
	return reportProps(idx, out, prefix, hit, prog)
}

func reportProps(idx props.Index, out, prefix string, cached bool, prog *progress) error {
	prog.done(fmt.Sprintf("Indexed %d attributes across %d machines", idx.Lines(), len(idx)))

	if len(idx) == 0 {
		printWarning("No lines matched prefix %q", prefix)
	} else {
		printSuccess("Indexed properties")
	}
	printFile(out)
	for _, m := range idx.Machines() {
		printDetail("%s: %d states", m, len(idx[m]))
	}
	printStats(0, 0, 0, cached)
	return nil
}
