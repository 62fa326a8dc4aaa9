// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package pins

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Entry is a single name -> pin binding of a registry.
type Entry struct {
	Name string
	Pin  *Pin
}

// Registry is an immutable, ordered mapping from names to pin handles.
type Registry struct {
	name    string
	entries []Entry
	index   map[string]int
}

// NewRegistry creates a registry with the given entries, in the given order.
// Names must be unique and every entry must have a pin.
func NewRegistry(name string, entries ...Entry) (*Registry, error) {
	r := &Registry{
		name:    name,
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, errors.Wrapf(ValidationError, "registry '%s' contains an empty name", name)
		}
		if e.Pin == nil {
			return nil, errors.Wrapf(ValidationError, "name '%s' in registry '%s' has no pin", e.Name, name)
		}
		if _, found := r.index[e.Name]; found {
			return nil, errors.Wrapf(ValidationError, "duplicate name '%s' in registry '%s'", e.Name, name)
		}
		r.index[e.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// MustNewRegistry is NewRegistry that panics on errors.
// Intended for static pin tables.
func MustNewRegistry(name string, entries ...Entry) *Registry {
	r, err := NewRegistry(name, entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Name of the registry ("board", "cpu").
func (r *Registry) Name() string { return r.name }

// Len returns the number of names in the registry.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Lookup returns the pin registered under the given name.
// Return false if not found.
func (r *Registry) Lookup(name string) (*Pin, bool) {
	if r == nil {
		return nil, false
	}
	if idx, found := r.index[name]; found {
		return r.entries[idx].Pin, true
	}
	return nil, false
}

// Entries returns all bindings in registry order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	result := make([]Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Pins returns the distinct pins of the registry in order of first appearance.
func (r *Registry) Pins() []*Pin {
	return lo.Uniq(lo.Map(r.Entries(), func(e Entry, _ int) *Pin { return e.Pin }))
}

// Aliases returns all names in the registry that are bound to exactly
// the given pin handle, in registry order.
func (r *Registry) Aliases(p *Pin) []string {
	matches := lo.Filter(r.Entries(), func(e Entry, _ int) bool { return e.Pin == p })
	return lo.Map(matches, func(e Entry, _ int) string { return e.Name })
}
