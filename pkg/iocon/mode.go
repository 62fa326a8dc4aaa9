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

package iocon

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Mode is the requested direction class of a pin.
type Mode uint8

const (
	ModeInput Mode = iota
	ModeOutput
	ModeOpenDrain
	ModeAlt
	ModeAltOpenDrain
)

var modeNames = []string{
	ModeInput:        "IN",
	ModeOutput:       "OUT",
	ModeOpenDrain:    "OPEN_DRAIN",
	ModeAlt:          "ALT",
	ModeAltOpenDrain: "ALT_OPEN_DRAIN",
}

// Validate returns nil for a known mode, InvalidModeError otherwise.
func (m Mode) Validate() error {
	if int(m) < len(modeNames) {
		return nil
	}
	return errors.Wrapf(InvalidModeError, "invalid pin mode: %d", int(m))
}

// String returns the constant name of the mode, e.g. "OUT".
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// IsOutput returns true for all modes that enable the output driver.
func (m Mode) IsOutput() bool {
	return m != ModeInput
}

// Direction returns the mode as it reads back from the register.
// Alternate modes share their bit pattern with the plain output modes.
func (m Mode) Direction() Mode {
	switch m {
	case ModeAlt:
		return ModeOutput
	case ModeAltOpenDrain:
		return ModeOpenDrain
	default:
		return m
	}
}

// bits returns the direction/drive bits of the mode, masked to ModeMask.
func (m Mode) bits() Descriptor {
	var b Descriptor
	switch m {
	case ModeOutput, ModeAlt:
		b = OutputBit
	case ModeOpenDrain, ModeAltOpenDrain:
		b = OutputBit | OpenDrainBit
	}
	return b & ModeMask
}

// ParseMode parses a mode constant name (case insensitive).
func ParseMode(s string) (Mode, error) {
	name := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "Pin."))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return ModeInput, errors.Wrapf(InvalidModeError, "invalid pin mode: '%s'", s)
}

// Pull is the pull resistor mode of a pin.
// The values equal the MODE field of the register.
type Pull uint8

const (
	PullNone Pull = iota
	PullDown
	PullUp
	PullRepeater
)

var pullNames = []string{
	PullNone:     "NONE",
	PullDown:     "PULL_DOWN",
	PullUp:       "PULL_UP",
	PullRepeater: "REPEATER",
}

// Validate returns nil for a known pull mode, InvalidPullError otherwise.
func (p Pull) Validate() error {
	if int(p) < len(pullNames) {
		return nil
	}
	return errors.Wrapf(InvalidPullError, "invalid pin pull: %d", int(p))
}

// String returns the constant name of the pull mode, e.g. "PULL_UP".
func (p Pull) String() string {
	if int(p) < len(pullNames) {
		return pullNames[p]
	}
	return fmt.Sprintf("Pull(%d)", int(p))
}

func (p Pull) bits() Descriptor {
	return (Descriptor(p) << pullShift) & PullMask
}

// ParsePull parses a pull constant name (case insensitive).
// An empty string means PullNone.
func ParsePull(s string) (Pull, error) {
	name := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "Pin."))
	if name == "" {
		return PullNone, nil
	}
	for p, n := range pullNames {
		if n == name {
			return Pull(p), nil
		}
	}
	return PullNone, errors.Wrapf(InvalidPullError, "invalid pin pull: '%s'", s)
}

// MarshalText encodes the mode by its constant name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode constant name.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText encodes the pull mode by its constant name.
func (p Pull) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a pull constant name.
func (p *Pull) UnmarshalText(text []byte) error {
	parsed, err := ParsePull(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
