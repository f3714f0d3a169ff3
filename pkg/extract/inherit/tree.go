package inherit

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Tree is the inheritance tree below a root class. Every class reached from
// the root has an entry, leaves included, in breadth-first discovery order.
type Tree struct {
	Root     string
	order    []string
	children map[string][]string
}

// BuildTree walks idx breadth-first from base. A class reached twice keeps
// its first entry, so diamond or cyclic declarations terminate. The root is
// always present, even when it has no subclasses.
func BuildTree(idx Index, base string) *Tree {
	t := &Tree{Root: base, children: make(map[string][]string)}
	queue := []string{base}
	for len(queue) > 0 {
		cls := queue[0]
		queue = queue[1:]
		if _, seen := t.children[cls]; seen {
			continue
		}
		subs := slices.Clone(idx[cls])
		if subs == nil {
			subs = []string{}
		}
		t.children[cls] = subs
		t.order = append(t.order, cls)
		queue = append(queue, subs...)
	}
	return t
}

// Classes returns every class in the tree in discovery order.
func (t *Tree) Classes() []string { return slices.Clone(t.order) }

// Children returns the direct subclasses of cls.
func (t *Tree) Children(cls string) []string { return slices.Clone(t.children[cls]) }

// Len returns the number of classes in the tree.
func (t *Tree) Len() int { return len(t.order) }

// MarshalJSON encodes the tree as an object of class → subclasses whose keys
// keep discovery order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cls := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(cls)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(t.children[cls])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
