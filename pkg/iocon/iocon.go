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

// Package iocon encodes and decodes the per-pin descriptor of the
// pin multiplexer (IOCON) register.
//
// Both the write path (Encode) and every read path (Decode*) use the
// bit positions defined in this file only.
package iocon

import "fmt"

// Descriptor is the packed value of one pin's multiplexer register.
type Descriptor uint32

// Register bit layout.
const (
	FuncMask Descriptor = 0xF // FUNC: alternate function selector

	pullShift           = 4
	PullMask Descriptor = 0x3 << pullShift // MODE: pull resistor

	InvertBit    Descriptor = 1 << 7  // INVERT: input polarity
	DigitalBit   Descriptor = 1 << 8  // DIGIMODE: digital (vs analog) mode
	FilterOffBit Descriptor = 1 << 9  // FILTEROFF: input glitch filter disabled
	OutputBit    Descriptor = 1 << 10 // output driver enabled
	OpenDrainBit Descriptor = 1 << 11 // open drain

	// ModeMask covers all direction/drive bits that a Mode may set.
	ModeMask Descriptor = 0xFFF
)

// MaxFunc is the highest alternate function selector that fits in FUNC.
const MaxFunc = uint8(FuncMask)

// Func returns the alternate function selector.
func (d Descriptor) Func() uint8 {
	return uint8(d & FuncMask)
}

// IsDigital returns true when the pin is in digital mode.
// A cleared DIGIMODE bit means the pin is analog.
func (d Descriptor) IsDigital() bool {
	return d&DigitalBit != 0
}

// Inverted returns true when the input polarity is inverted.
func (d Descriptor) Inverted() bool {
	return d&InvertBit != 0
}

// Filtered returns true when the input glitch filter is active.
func (d Descriptor) Filtered() bool {
	return d&FilterOffBit == 0
}

func (d Descriptor) String() string {
	return fmt.Sprintf("0x%03X", uint32(d))
}
