package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
)

// =============================================================================
// Payload Serialization API
// =============================================================================

// MarshalGraph converts a built graph to JSON bytes.
func MarshalGraph(machine string, g *fsm.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(machine, g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a built graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(machine string, g *fsm.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(machine, g, f)
}

// WriteGraph writes a built graph as JSON to an io.Writer.
func WriteGraph(machine string, g *fsm.Graph, w io.Writer) error {
	return writeGraphTo(machine, g, w)
}

// ReadGraphFile reads a payload JSON file and rebuilds the graph.
func ReadGraphFile(path string) (*fsm.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a payload from an io.Reader and rebuilds the graph.
func ReadGraph(r io.Reader) (*fsm.Graph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(machine string, g *fsm.Graph, w io.Writer) error {
	out := FromFSM(machine, g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*fsm.Graph, error) {
	var data Payload
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToFSM(data)
}
