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

// Package resolver maps user supplied identifiers onto canonical pin handles.
//
// Strategies are tried in this order; the first match wins:
//
//  1. The identifier is a pin handle
//  2. The user supplied mapper
//  3. The user supplied mapping table
//  4. A name in the board registry
//  5. A name in the cpu registry
package resolver

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinMux/pkg/pins"
)

// Strategy names, as used in traces and metrics.
const (
	StrategyPin     = "pin"
	StrategyMapper  = "mapper"
	StrategyMapDict = "map_dict"
	StrategyBoard   = "board"
	StrategyCPU     = "cpu"
)

// Resolver resolves identifiers using a State and two registries.
type Resolver struct {
	log   zerolog.Logger
	state *State
	board *pins.Registry
	cpu   *pins.Registry
}

// New creates a Resolver.
// If state is nil, a fresh State is used.
// Traces are written without a level, so only State.Debug gates them.
func New(log zerolog.Logger, state *State, board, cpu *pins.Registry) *Resolver {
	if state == nil {
		state = NewState()
	}
	return &Resolver{
		log:   log.With().Str("component", "pin-resolver").Logger(),
		state: state,
		board: board,
		cpu:   cpu,
	}
}

// State returns the user settable state of the resolver.
func (r *Resolver) State() *State { return r.state }

// Board returns the board registry.
func (r *Resolver) Board() *pins.Registry { return r.board }

// CPU returns the cpu registry.
func (r *Resolver) CPU() *pins.Registry { return r.cpu }

// Resolve returns the canonical pin handle for the given identifier.
func (r *Resolver) Resolve(id Identifier) (*pins.Pin, error) {
	if id == nil {
		resolveErrorCounters.WithLabelValues("not_found").Inc()
		return nil, errors.Wrap(InvalidIdentifierError, "pin '<nil>' not a valid pin identifier")
	}
	mapper, mappingTable, debug := r.state.snapshot()

	// If a pin was provided, then use it
	if x, ok := id.(PinID); ok && x.Pin != nil {
		return r.matched(debug, StrategyPin, id, x.Pin), nil
	}

	if mapper != nil {
		result := mapper.Map(id)
		if debug {
			r.log.Log().
				Str("identifier", id.String()).
				Str("result", fmt.Sprintf("%v", result)).
				Msg("Pin.mapper returned")
		}
		switch x := result.(type) {
		case nil, noMatch:
			// No definitive mapping, fall through to other lookup methods.
		case *pins.Pin:
			if x == nil {
				resolveErrorCounters.WithLabelValues("mapper").Inc()
				return nil, errors.Wrapf(MapperContractViolationError, "Pin.mapper didn't return a Pin object for %s", id)
			}
			return r.matched(debug, StrategyMapper, id, x), nil
		default:
			resolveErrorCounters.WithLabelValues("mapper").Inc()
			return nil, errors.Wrapf(MapperContractViolationError, "Pin.mapper didn't return a Pin object for %s (got %T)", id, result)
		}
	}

	if mappingTable != nil {
		if p, found := mappingTable.Lookup(id.Value()); found {
			return r.matched(debug, StrategyMapDict, id, p), nil
		}
	}

	if name, ok := registryName(id); ok {
		// See if the pin name matches a board pin
		if p, found := r.board.Lookup(name); found {
			return r.matched(debug, StrategyBoard, id, p), nil
		}
		// See if the pin name matches a cpu pin
		if p, found := r.cpu.Lookup(name); found {
			return r.matched(debug, StrategyCPU, id, p), nil
		}
	}

	resolveErrorCounters.WithLabelValues("not_found").Inc()
	return nil, errors.Wrapf(InvalidIdentifierError, "pin '%s' not a valid pin identifier", display(id))
}

// ResolveAny parses the given value into an identifier and resolves it.
func (r *Resolver) ResolveAny(v any) (*pins.Pin, error) {
	return r.Resolve(Parse(v))
}

// matched traces a successful resolution and returns its pin.
func (r *Resolver) matched(debug bool, strategy string, id Identifier, p *pins.Pin) *pins.Pin {
	if debug {
		r.log.Log().
			Str("strategy", strategy).
			Str("identifier", id.String()).
			Str("pin", p.String()).
			Msgf("Pin.%s maps %s to %s", strategy, id, p)
	}
	resolveCounters.WithLabelValues(strategy).Inc()
	return p
}
