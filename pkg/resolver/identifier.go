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
	"fmt"
	"strconv"

	"github.com/binkynet/PinMux/pkg/pins"
)

// Identifier is anything a caller can use to denote a pin.
// It is one of PinID, Name or Key.
type Identifier interface {
	// Value returns the identifier as used for mapping table lookups.
	Value() any
	// String returns a printable form of the identifier.
	String() string

	isIdentifier()
}

// PinID is an identifier that already holds a pin handle.
type PinID struct {
	Pin *pins.Pin
}

// Name identifies a pin by a board or cpu name, or a user alias.
type Name string

// Key identifies a pin by an arbitrary comparable value.
// It can only be resolved by a mapper or a mapping table, unless
// it holds a string.
type Key struct {
	V any
}

// Of wraps a pin handle into an identifier.
func Of(p *pins.Pin) Identifier { return PinID{Pin: p} }

// Parse converts a value into an identifier.
// Pins become PinID, strings become Name, other values become Key.
func Parse(v any) Identifier {
	switch x := v.(type) {
	case Identifier:
		return x
	case *pins.Pin:
		return PinID{Pin: x}
	case string:
		return Name(x)
	default:
		return Key{V: v}
	}
}

func (id PinID) Value() any { return id.Pin }
func (id Name) Value() any  { return string(id) }
func (id Key) Value() any   { return id.V }

func (id PinID) String() string {
	if id.Pin == nil {
		return "<nil>"
	}
	return id.Pin.String()
}
func (id Name) String() string { return strconv.Quote(string(id)) }
func (id Key) String() string  { return fmt.Sprintf("%v", id.V) }

func (PinID) isIdentifier() {}
func (Name) isIdentifier()  {}
func (Key) isIdentifier()   {}

// registryName returns the name to look up in the board and cpu registries.
// Returns false if the identifier cannot denote a registry name.
func registryName(id Identifier) (string, bool) {
	switch x := id.(type) {
	case Name:
		return string(x), true
	case Key:
		s, ok := x.V.(string)
		return s, ok
	default:
		return "", false
	}
}

// display returns the identifier as shown in error messages.
func display(id Identifier) string {
	if n, ok := registryName(id); ok {
		return n
	}
	return id.String()
}
