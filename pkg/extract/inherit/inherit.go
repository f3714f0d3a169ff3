// Package inherit mines class declarations from a source tree and builds the
// inheritance tree below a base class.
//
// Declarations are found with a regular expression rather than a parser, so
// any language whose classes read "class Name: Base" or "class Name extends
// Base" works. Only the first base after the colon is recorded.
//
//	idx, err := inherit.IndexClasses(ctx, "Sources", ".swift")
//	tree := inherit.BuildTree(idx, "GKState")
//	err = inherit.WriteAll(tree, "out")
package inherit

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stateviz/pkg/errors"
	"github.com/matzehuels/stateviz/pkg/observability"
)

// DefaultExt is the file extension scanned when none is given.
const DefaultExt = ".swift"

const toolName = "inherit"

var classRe = regexp.MustCompile(`class\s+(\w+)(?:\s*(?:extends|:)\s*(\w+))?`)

// Index maps a base class to its direct subclasses in discovery order.
// Discovery order is file walk order, then position within the file.
type Index map[string][]string

// Option configures [IndexClasses].
type Option func(*indexConfig)

type indexConfig struct {
	workers int
	logger  *log.Logger
}

// WithWorkers bounds how many files are read concurrently. Values below one
// are ignored.
func WithWorkers(n int) Option {
	return func(c *indexConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger for per-file progress and warnings.
func WithLogger(l *log.Logger) Option {
	return func(c *indexConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// IndexClasses walks root and records every subclass declaration found in
// files ending in ext. An empty ext means [DefaultExt].
//
// Files are read concurrently but merged in walk order, so the result is
// deterministic. Unreadable files are skipped with a warning; a missing or
// non-directory root is an error.
func IndexClasses(ctx context.Context, root, ext string, opts ...Option) (Index, error) {
	cfg := indexConfig{workers: runtime.GOMAXPROCS(0), logger: log.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if ext == "" {
		ext = DefaultExt
	}
	if err := errors.ValidateExtension(ext); err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "root directory %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "root is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			cfg.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && filepath.Ext(path) == ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "walk %s", root)
	}

	results := make([][][2]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				cfg.logger.Warn("skipping unreadable file", "path", path, "error", err)
				return nil
			}
			results[i] = scan(content)
			cfg.logger.Debug("processed file", "path", path, "subclasses", len(results[i]))
			observability.Extract().OnFileScanned(ctx, toolName, len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := make(Index)
	for _, pairs := range results {
		for _, p := range pairs {
			idx[p[1]] = append(idx[p[1]], p[0])
		}
	}
	return idx, nil
}

// scan returns (class, base) pairs for every declaration with a base.
func scan(content []byte) [][2]string {
	var out [][2]string
	for _, m := range classRe.FindAllSubmatch(content, -1) {
		if len(m[2]) == 0 {
			continue
		}
		out = append(out, [2]string{string(m[1]), string(m[2])})
	}
	return out
}

// Result summarizes one [Extract] run.
type Result struct {
	Tree  *Tree
	Files []string
}

// Extract indexes root, builds the tree below base and writes every output
// format into outDir.
func Extract(ctx context.Context, root, base, ext, outDir string, opts ...Option) (*Result, error) {
	start := time.Now()
	res, err := extract(ctx, root, base, ext, outDir, opts...)
	items := 0
	if res != nil {
		items = res.Tree.Len()
	}
	observability.Extract().OnExtractComplete(ctx, toolName, items, time.Since(start), err)
	return res, err
}

func extract(ctx context.Context, root, base, ext, outDir string, opts ...Option) (*Result, error) {
	if err := errors.ValidateIdentifier("class", base); err != nil {
		return nil, err
	}
	idx, err := IndexClasses(ctx, root, ext, opts...)
	if err != nil {
		return nil, err
	}
	tree := BuildTree(idx, base)
	files, err := WriteAll(tree, outDir, base)
	if err != nil {
		return nil, err
	}
	return &Result{Tree: tree, Files: files}, nil
}
