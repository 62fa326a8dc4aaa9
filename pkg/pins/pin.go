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

// Package pins holds the canonical pin handles of a chip and the
// named registries that point at them.
//
// A *Pin is created once when the pin table is built and shared by
// every registry and lookup afterwards. Two handles denote the same
// physical pin only if they are the same pointer.
package pins

import (
	"fmt"
)

// AltFunc describes one selectable peripheral function of a pin.
type AltFunc struct {
	name  string
	index uint8
	reg   uint32
}

// NewAltFunc creates an alternate function descriptor.
// Index 0 is plain digital I/O, 1..15 select a peripheral.
// Reg is the base address of the peripheral block the function routes to.
func NewAltFunc(name string, index uint8, reg uint32) AltFunc {
	return AltFunc{name: name, index: index, reg: reg}
}

// Name of the alternate function, e.g. "FC0_RXD_SDA_MOSI".
func (af AltFunc) Name() string { return af.name }

// Index of the alternate function as written to the FUNC field.
func (af AltFunc) Index() uint8 { return af.index }

// Reg returns the base address of the peripheral this function routes to.
func (af AltFunc) Reg() uint32 { return af.reg }

// String returns "Pin.<name>".
func (af AltFunc) String() string {
	return "Pin." + af.name
}

// Pin identifies one physical pin of the chip.
type Pin struct {
	name     string
	port     uint8
	number   uint8
	gpioBase uint32
	afs      []AltFunc
}

// NewPin creates a canonical pin handle.
// The given alternate functions are copied, the handle is immutable afterwards.
func NewPin(name string, port, number uint8, gpioBase uint32, afs ...AltFunc) *Pin {
	p := &Pin{
		name:     name,
		port:     port,
		number:   number,
		gpioBase: gpioBase,
	}
	if len(afs) > 0 {
		p.afs = make([]AltFunc, len(afs))
		copy(p.afs, afs)
	}
	return p
}

// Name returns the canonical (cpu) name of the pin.
func (p *Pin) Name() string { return p.name }

// Port returns the index of the GPIO port the pin belongs to.
func (p *Pin) Port() uint8 { return p.port }

// Number returns the index of the pin within its port.
func (p *Pin) Number() uint8 { return p.number }

// GPIOBase returns the address of the GPIO block that owns this pin.
func (p *Pin) GPIOBase() uint32 { return p.gpioBase }

// AFCount returns the number of alternate functions of the pin.
func (p *Pin) AFCount() int { return len(p.afs) }

// AFList returns the alternate functions of the pin in table order.
// The returned slice is a copy; changing it does not affect the pin.
func (p *Pin) AFList() []AltFunc {
	result := make([]AltFunc, len(p.afs))
	copy(result, p.afs)
	return result
}

// FindAF returns the first alternate function with the given index.
// Returns false if the pin has no such function.
func (p *Pin) FindAF(index uint8) (AltFunc, bool) {
	for _, af := range p.afs {
		if af.index == index {
			return af, true
		}
	}
	return AltFunc{}, false
}

// FindAFByName returns the alternate function with the given name.
// Returns false if the pin has no such function.
func (p *Pin) FindAFByName(name string) (AltFunc, bool) {
	for _, af := range p.afs {
		if af.name == name {
			return af, true
		}
	}
	return AltFunc{}, false
}

// String returns "Pin.cpu.<name>".
func (p *Pin) String() string {
	return fmt.Sprintf("Pin.cpu.%s", p.name)
}
