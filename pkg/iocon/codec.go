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
	"encoding/json"

	"github.com/pkg/errors"
)

// Config is the logical configuration of a pin.
type Config struct {
	// Direction class (required)
	Mode Mode `json:"mode"`
	// Pull resistor, defaults to none
	Pull Pull `json:"pull,omitempty"`
	// Legacy alternate function argument.
	// Only used when Alt is 0.
	AF uint8 `json:"af,omitempty"`
	// Alternate function selector, 0 selects plain GPIO.
	Alt uint8 `json:"alt,omitempty"`
	// Initial output value. When nil, the output data bit is left untouched.
	Value *bool `json:"value,omitempty"`
	// Invert the input polarity
	Invert bool `json:"invert,omitempty"`
	// Enable the input glitch filter
	Filter bool `json:"filter,omitempty"`
}

// UnmarshalJSON decodes a config and rejects documents without a mode.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	var raw struct {
		plain
		Mode *Mode `json:"mode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Mode == nil {
		return errors.Wrap(InvalidModeError, "missing pin mode")
	}
	*c = Config(raw.plain)
	c.Mode = *raw.Mode
	return nil
}

// Selector returns the alternate function selector that is written to FUNC.
// An explicit Alt always takes precedence over the legacy AF argument.
func (c Config) Selector() uint8 {
	if c.Alt != 0 {
		return c.Alt
	}
	return c.AF
}

// IsGPIO returns true when the configuration selects plain digital I/O.
func (c Config) IsGPIO() bool {
	return c.Selector() == 0
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c Config) Validate() error {
	if err := c.Mode.Validate(); err != nil {
		return err
	}
	if err := c.Pull.Validate(); err != nil {
		return err
	}
	if sel := c.Selector(); sel > MaxFunc {
		return errors.Wrapf(InvalidAlternateFunctionError, "invalid pin alternate function: %d", sel)
	}
	return nil
}

// Encode validates the configuration and packs it into a descriptor.
// The descriptor is only returned when the whole configuration is valid.
func Encode(c Config) (Descriptor, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	d := Descriptor(c.Selector()) & FuncMask
	d |= c.Mode.bits()
	d |= DigitalBit
	d |= c.Pull.bits()
	if c.Invert {
		d |= InvertBit
	}
	if !c.Filter {
		d |= FilterOffBit
	}
	return d, nil
}

// DecodeMode returns the direction class stored in the descriptor:
// ModeInput, ModeOutput or ModeOpenDrain.
func DecodeMode(d Descriptor) Mode {
	switch {
	case d&OutputBit == 0:
		return ModeInput
	case d&OpenDrainBit == 0:
		return ModeOutput
	default:
		return ModeOpenDrain
	}
}

// DecodePull returns the pull resistor mode stored in the descriptor.
func DecodePull(d Descriptor) Pull {
	return Pull((d & PullMask) >> pullShift)
}

// DecodeAF returns the alternate function selector stored in the descriptor.
func DecodeAF(d Descriptor) uint8 {
	return d.Func()
}
