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

package resolver

import (
	"sync"

	"github.com/binkynet/PinMux/pkg/pins"
)

// Mapper is a user supplied resolution strategy.
//
// Map returns a *pins.Pin for a definitive match, or NoMatch (or nil)
// to let the remaining strategies run. Any other result is a contract
// violation.
type Mapper interface {
	Map(id Identifier) any
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc func(id Identifier) any

// Map implements Mapper.
func (f MapperFunc) Map(id Identifier) any { return f(id) }

type noMatch struct{}

func (noMatch) String() string { return "NoMatch" }

// NoMatch is returned by a Mapper that has no mapping for an identifier.
var NoMatch any = noMatch{}

// MappingTable is a user supplied key -> pin table.
type MappingTable interface {
	Lookup(key any) (*pins.Pin, bool)
}

// Map is a MappingTable backed by a Go map.
// Keys must be comparable.
type Map map[any]*pins.Pin

// Lookup implements MappingTable.
func (m Map) Lookup(key any) (result *pins.Pin, found bool) {
	defer func() {
		// Uncomparable keys cannot be in the map.
		if recover() != nil {
			result, found = nil, false
		}
	}()
	result, found = m[key]
	return result, found && result != nil
}

// State holds the user settable part of pin resolution.
// The zero value has no mapper, no mapping table and debugging off.
type State struct {
	mutex        sync.RWMutex
	mapper       Mapper
	mappingTable MappingTable
	debug        bool
}

// NewState creates a State in its initial configuration.
func NewState() *State {
	return &State{}
}

// Mapper returns the current mapper, or nil if not set.
func (s *State) Mapper() Mapper {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.mapper
}

// SetMapper replaces the mapper. Pass nil to remove it.
func (s *State) SetMapper(m Mapper) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.mapper = m
}

// MappingTable returns the current mapping table, or nil if not set.
func (s *State) MappingTable() MappingTable {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.mappingTable
}

// SetMappingTable replaces the mapping table. Pass nil to remove it.
func (s *State) SetMappingTable(t MappingTable) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.mappingTable = t
}

// Debug returns true when resolution tracing is enabled.
func (s *State) Debug() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.debug
}

// SetDebug enables or disables resolution tracing.
func (s *State) SetDebug(enabled bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.debug = enabled
}

// snapshot returns all fields at once, so a single resolution sees
// a consistent state.
func (s *State) snapshot() (Mapper, MappingTable, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.mapper, s.mappingTable, s.debug
}
