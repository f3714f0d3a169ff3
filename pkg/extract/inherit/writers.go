package inherit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/stateviz/pkg/errors"
)

// ForceNode is one class in force-graph data.
type ForceNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Val  int    `json:"val"`
}

// ForceLink is one parent → subclass edge in force-graph data.
type ForceLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ForceGraphData is the node/link form consumed by force-directed viewers.
type ForceGraphData struct {
	Nodes []ForceNode `json:"nodes"`
	Links []ForceLink `json:"links"`
}

// WriteJSON writes the tree as indented JSON.
func WriteJSON(w io.Writer, t *Tree) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Mermaid renders the tree as a Mermaid class diagram.
func Mermaid(t *Tree) string {
	var buf bytes.Buffer
	buf.WriteString("classDiagram\n")
	for _, parent := range t.order {
		for _, child := range t.children[parent] {
			fmt.Fprintf(&buf, "    %s <|-- %s\n", parent, child)
		}
	}
	return buf.String()
}

// ForceGraph flattens the tree into unique nodes and one link per
// parent/subclass entry.
func ForceGraph(t *Tree) ForceGraphData {
	out := ForceGraphData{Nodes: []ForceNode{}, Links: []ForceLink{}}
	added := make(map[string]bool)
	add := func(id string) {
		if !added[id] {
			added[id] = true
			out.Nodes = append(out.Nodes, ForceNode{ID: id, Name: id, Val: 1})
		}
	}
	for _, parent := range t.order {
		add(parent)
		for _, child := range t.children[parent] {
			add(child)
			out.Links = append(out.Links, ForceLink{Source: parent, Target: child})
		}
	}
	return out
}

// WriteLinksCSV writes a "source,target" CSV of the force-graph links.
func WriteLinksCSV(w io.Writer, fg ForceGraphData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"source", "target"}); err != nil {
		return err
	}
	for _, l := range fg.Links {
		if err := cw.Write([]string{l.Source, l.Target}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetadataCSV writes an "id,label" CSV of the force-graph nodes.
func WriteMetadataCSV(w io.Writer, fg ForceGraphData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "label"}); err != nil {
		return err
	}
	for _, n := range fg.Nodes {
		if err := cw.Write([]string{n.ID, n.Name}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DOT renders the tree as a Graphviz digraph with UML inheritance arrows
// pointing from each subclass to its parent.
func DOT(t *Tree) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  node [shape=box, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [arrowhead=empty];\n\n")
	for _, cls := range t.order {
		fmt.Fprintf(&buf, "  %q;\n", cls)
	}
	buf.WriteString("\n")
	for _, parent := range t.order {
		for _, child := range t.children[parent] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", child, parent)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// Output suffixes appended to the base name by [WriteAll].
const (
	SuffixJSON     = ".json"
	SuffixMermaid  = ".mm"
	SuffixNodes    = "_nodes.json"
	SuffixLinks    = "_links.csv"
	SuffixMetadata = "_metadata.csv"
	SuffixDOT      = ".dot"
)

// WriteAll writes every output format for the tree into dir, named after
// base, and returns the written paths in a fixed order.
func WriteAll(t *Tree, dir, base string) ([]string, error) {
	if err := errors.ValidateOutputBase(base); err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "output directory does not exist: %s", dir)
	}

	fg := ForceGraph(t)
	outputs := []struct {
		suffix string
		write  func(io.Writer) error
	}{
		{SuffixJSON, func(w io.Writer) error { return WriteJSON(w, t) }},
		{SuffixMermaid, func(w io.Writer) error { _, err := io.WriteString(w, Mermaid(t)); return err }},
		{SuffixNodes, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(fg)
		}},
		{SuffixLinks, func(w io.Writer) error { return WriteLinksCSV(w, fg) }},
		{SuffixMetadata, func(w io.Writer) error { return WriteMetadataCSV(w, fg) }},
		{SuffixDOT, func(w io.Writer) error { _, err := io.WriteString(w, DOT(t)); return err }},
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(dir, base+o.suffix)
		if err := writeFile(path, o.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
