// Package props indexes state attributes from dotted log lines and serves the
// per-state property bags shown by inspectors.
//
// A log line looks like
//
//	playerStateMachineMelee.Swing.damage,12
//
// and contributes attribute "damage" to state "Swing" of machine "Melee".
// [Index] groups every matching line into machine → state → attributes.
package props

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stateviz/pkg/errors"
	"github.com/matzehuels/stateviz/pkg/observability"
)

// DefaultPrefix is the line prefix matched when none is given.
const DefaultPrefix = "playerStateMachine"

const toolName = "props"

// maxLineSize bounds a single log line.
const maxLineSize = 1 << 20

// Index maps machine → state → attribute names in log order. Duplicate
// attributes are kept.
type Index map[string]map[string][]string

// Machines returns the indexed machine names, sorted.
func (idx Index) Machines() []string {
	out := make([]string, 0, len(idx))
	for m := range idx {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// Lines returns the total number of attributes indexed.
func (idx Index) Lines() int {
	n := 0
	for _, states := range idx {
		for _, attrs := range states {
			n += len(attrs)
		}
	}
	return n
}

// Pattern returns the line pattern for prefix. The prefix is matched
// literally.
func Pattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\w+)\.([\w\d]+)\.(\w+),\d+$`)
}

// Parse reads r line by line and groups every line matching prefix. An empty
// prefix means [DefaultPrefix]. Lines that do not match are skipped. Both LF
// and CRLF line endings are accepted.
func Parse(ctx context.Context, r io.Reader, prefix string) (Index, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	re := Pattern(prefix)

	idx := make(Index)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for n := 0; sc.Scan(); n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := bytes.TrimSuffix(sc.Bytes(), []byte{'\r'})
		m := re.FindSubmatch(line)
		if m == nil {
			continue
		}
		machine, state, attr := string(m[1]), string(m[2]), string(m[3])
		states, ok := idx[machine]
		if !ok {
			states = make(map[string][]string)
			idx[machine] = states
		}
		states[state] = append(states[state], attr)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read log")
	}
	return idx, nil
}

// IndexFile indexes the log at in and writes the result as indented JSON to
// out. The input must exist and the output directory must already exist.
func IndexFile(ctx context.Context, in, out, prefix string) (Index, error) {
	start := time.Now()
	idx, err := indexFile(ctx, in, out, prefix)
	observability.Extract().OnExtractComplete(ctx, toolName, idx.Lines(), time.Since(start), err)
	return idx, err
}

func indexFile(ctx context.Context, in, out, prefix string) (Index, error) {
	if info, err := os.Stat(in); err != nil || info.IsDir() {
		return nil, errors.New(errors.ErrCodeFileNotFound, "input file %s does not exist", in)
	}
	if info, err := os.Stat(filepath.Dir(out)); err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "output directory %s does not exist", filepath.Dir(out))
	}

	f, err := os.Open(in)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", in)
	}
	defer f.Close()

	idx, err := Parse(ctx, f, prefix)
	if err != nil {
		return nil, err
	}
	observability.Extract().OnFileScanned(ctx, toolName, idx.Lines())
	log.Debug("indexed log", "path", in, "machines", len(idx), "attributes", idx.Lines())

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode index")
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", out)
	}
	return idx, nil
}

// ReadIndex decodes an index written by [IndexFile].
func ReadIndex(data []byte) (Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode index")
	}
	return idx, nil
}
