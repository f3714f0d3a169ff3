// Package registry loads the set of state machines a viewer can show.
//
// A registry file maps machine names to their initial state and transitions.
// YAML is the native format; JSON is accepted as a YAML subset.
//
//	default: Player
//	machines:
//	  Player:
//	    initialState: Idle
//	    transitions:
//	      - {from: Idle, to: Walk}
//	      - {from: Walk, to: Idle}
//
// A [Registry] is immutable once loaded. [Watcher] reloads the file on change
// and hands the new registry to a callback, so readers swap whole registries
// rather than mutating one.
package registry

import (
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stateviz/pkg/cache"
	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type document struct {
	Default  string                 `yaml:"default"`
	Machines map[string]machineSpec `yaml:"machines" validate:"required,min=1,dive,keys,required,endkeys"`
}

type machineSpec struct {
	InitialState string           `yaml:"initialState"`
	Transitions  []transitionSpec `yaml:"transitions" validate:"dive"`
}

type transitionSpec struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}

// Registry is a named collection of state machines.
type Registry struct {
	path     string
	hash     string
	def      string
	names    []string
	machines map[string]fsm.Machine
}

// Load reads and parses a registry file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "registry file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read registry %s", path)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, err
	}
	r.path = path
	return r, nil
}

// Parse decodes a registry from YAML or JSON bytes.
//
// A machine without an initialState starts at the source of its first
// transition. The default machine falls back to the first name in sorted
// order when unset.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode registry")
	}
	if err := validate.Struct(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMachine, err, "invalid registry")
	}

	r := &Registry{
		hash:     cache.Hash(data),
		machines: make(map[string]fsm.Machine, len(doc.Machines)),
	}
	for name, spec := range doc.Machines {
		m := fsm.Machine{
			InitialState: spec.InitialState,
			Transitions:  make([]fsm.Transition, len(spec.Transitions)),
		}
		for i, t := range spec.Transitions {
			m.Transitions[i] = fsm.Transition{From: t.From, To: t.To}
		}
		if m.InitialState == "" && len(m.Transitions) > 0 {
			m.InitialState = m.Transitions[0].From
		}
		r.machines[name] = m
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)

	r.def = doc.Default
	if r.def == "" {
		r.def = r.names[0]
	}
	if _, ok := r.machines[r.def]; !ok {
		return nil, errors.New(errors.ErrCodeMachineNotFound, "default machine not found: %s", r.def)
	}
	return r, nil
}

// Path returns the file the registry was loaded from, or "" when parsed from
// bytes.
func (r *Registry) Path() string { return r.path }

// Hash returns the SHA-256 of the registry source.
func (r *Registry) Hash() string { return r.hash }

// Default returns the machine shown when none is requested.
func (r *Registry) Default() string { return r.def }

// Names returns every machine name, sorted.
func (r *Registry) Names() []string { return slices.Clone(r.names) }

// Len returns the number of machines.
func (r *Registry) Len() int { return len(r.names) }

// Machine returns the named machine definition.
func (r *Registry) Machine(name string) (fsm.Machine, error) {
	m, ok := r.machines[name]
	if !ok {
		return fsm.Machine{}, errors.New(errors.ErrCodeMachineNotFound, "machine not found: %s", name)
	}
	return m, nil
}

// Build constructs a fresh graph for the named machine. Every call yields a
// new graph with its own generation.
func (r *Registry) Build(name string, opts ...fsm.Option) (*fsm.Graph, error) {
	m, err := r.Machine(name)
	if err != nil {
		return nil, err
	}
	return fsm.BuildMachine(m, opts...), nil
}

// States returns the distinct state IDs of the named machine, sorted.
func (r *Registry) States(name string) ([]string, error) {
	m, err := r.Machine(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range m.Transitions {
		for _, id := range []string{t.From, t.To} {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}
