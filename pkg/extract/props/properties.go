package props

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/stateviz/pkg/errors"
)

// Aliases maps a machine name to the name its properties are stored under.
// The property data predates a rename and still uses the misspelt key.
var Aliases = map[string]string{
	"ScenesFastForward": "ScenesFoastFoward",
}

// Properties is the property bag shown by inspectors: machine → state →
// property name → value, as decoded from JSON.
type Properties map[string]map[string]map[string]any

// LoadProperties reads a properties file. A missing file is an error; use an
// empty [Properties] when the viewer runs without one.
func LoadProperties(path string) (Properties, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "properties file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadProperties(f)
}

// ReadProperties decodes a properties document.
func ReadProperties(r io.Reader) (Properties, error) {
	var p Properties
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode properties")
	}
	if p == nil {
		p = Properties{}
	}
	return p, nil
}

// For returns the properties of state in machine, resolving machine aliases.
// It returns nil when there is nothing to show.
func (p Properties) For(machine, state string) map[string]any {
	if state == "" {
		return nil
	}
	if alias, ok := Aliases[machine]; ok {
		machine = alias
	}
	props := p[machine][state]
	if len(props) == 0 {
		return nil
	}
	return props
}

// Property is one rendered entry of a property bag.
type Property struct {
	Name  string
	Kind  Kind
	Value any
}

// Kind classifies a property value for display.
type Kind int

const (
	KindUnknown Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// KindOf classifies a decoded JSON value.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case float64, int, int64, json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	}
	return KindUnknown
}

// Sorted returns the bag's entries ordered by name.
func Sorted(bag map[string]any) []Property {
	names := make([]string, 0, len(bag))
	for name := range bag {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]Property, len(names))
	for i, name := range names {
		out[i] = Property{Name: name, Kind: KindOf(bag[name]), Value: bag[name]}
	}
	return out
}

// Format renders a value the way inspectors show it: numbers with two
// decimals, booleans as a checkbox, arrays element by element and objects as
// indented JSON.
func Format(v any) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "[x]"
		}
		return "[ ]"
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case int:
		return strconv.FormatFloat(float64(x), 'f', 2, 64)
	case string:
		return x
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = fmt.Sprintf("[%d] %s", i, Format(item))
		}
		return strings.Join(parts, "\n")
	case map[string]any:
		data, err := json.MarshalIndent(x, "", "  ")
		if err != nil {
			return "Unknown type"
		}
		return string(data)
	}
	return "Unknown type"
}
