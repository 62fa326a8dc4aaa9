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

package board

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"

	"github.com/binkynet/PinMux/pkg/iocon"
	"github.com/binkynet/PinMux/pkg/pins"
	"github.com/binkynet/PinMux/pkg/service/bridge"
)

//go:embed lpcxpresso54608.json
var defaultBoardJSON []byte

// Description holds the pin tables of a board, as stored in a board file.
type Description struct {
	// Name of the board
	Name string `json:"name"`
	// Default address of the GPIO block, used for pins that do not specify one.
	GPIOBase uint32 `json:"gpio_base,omitempty"`
	// CPU pins, in cpu registry order
	Pins []PinDescription `json:"pins"`
	// Board names, in board registry order
	Aliases []AliasDescription `json:"board,omitempty"`
	// Configurations applied at startup, in order
	Init []InitDescription `json:"init,omitempty"`
}

// PinDescription describes one CPU pin.
type PinDescription struct {
	Name     string               `json:"name"`
	Port     uint8                `json:"port"`
	Pin      uint8                `json:"pin"`
	GPIOBase uint32               `json:"gpio_base,omitempty"`
	AF       []AltFuncDescription `json:"af,omitempty"`
}

// AltFuncDescription describes one alternate function of a CPU pin.
type AltFuncDescription struct {
	Name  string `json:"name"`
	Index uint8  `json:"index"`
	Reg   uint32 `json:"reg,omitempty"`
}

// AliasDescription binds a board name to a CPU pin name.
type AliasDescription struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
}

// InitDescription binds a startup configuration to a board or cpu name.
// In a board file the configuration fields sit next to "pin".
type InitDescription struct {
	Pin    string
	Config iocon.Config
}

// UnmarshalJSON decodes a flat {"pin": ..., "mode": ..., ...} entry.
func (i *InitDescription) UnmarshalJSON(data []byte) error {
	var head struct {
		Pin string `json:"pin"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var conf iocon.Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return errors.Wrapf(err, "startup configuration of pin '%s'", head.Pin)
	}
	*i = InitDescription{Pin: head.Pin, Config: conf}
	return nil
}

// Board holds the registries built from a Description.
type Board struct {
	Name  string
	Board *pins.Registry
	CPU   *pins.Registry
	Init  []InitDescription
}

// Validate the given description, returning nil on ok,
// or an error listing all validation issues.
func (d Description) Validate() error {
	var ae aerr.AggregateError
	if len(d.Pins) == 0 {
		ae.Add(fmt.Errorf("board '%s' has no pins", d.Name))
	}
	cpuNames := make(map[string]struct{})
	locations := make(map[[2]uint8]string)
	for _, p := range d.Pins {
		if p.Name == "" {
			ae.Add(fmt.Errorf("pin P%d_%d has no name", p.Port, p.Pin))
		} else if _, found := cpuNames[p.Name]; found {
			ae.Add(fmt.Errorf("duplicate pin name '%s'", p.Name))
		}
		cpuNames[p.Name] = struct{}{}
		if p.Port >= bridge.MaxPorts || p.Pin >= bridge.PinsPerPort {
			ae.Add(fmt.Errorf("pin '%s' has invalid location P%d_%d", p.Name, p.Port, p.Pin))
		}
		loc := [2]uint8{p.Port, p.Pin}
		if other, found := locations[loc]; found {
			ae.Add(fmt.Errorf("pins '%s' and '%s' share location P%d_%d", other, p.Name, p.Port, p.Pin))
		}
		locations[loc] = p.Name
		for _, af := range p.AF {
			if af.Name == "" {
				ae.Add(fmt.Errorf("alternate function %d of pin '%s' has no name", af.Index, p.Name))
			}
			if af.Index == 0 || af.Index > iocon.MaxFunc {
				ae.Add(fmt.Errorf("alternate function '%s' of pin '%s' has invalid index %d", af.Name, p.Name, af.Index))
			}
		}
	}
	aliases := make(map[string]struct{})
	for _, a := range d.Aliases {
		if a.Name == "" {
			ae.Add(fmt.Errorf("board name for pin '%s' is empty", a.Pin))
		} else if _, found := aliases[a.Name]; found {
			ae.Add(fmt.Errorf("duplicate board name '%s'", a.Name))
		}
		aliases[a.Name] = struct{}{}
		if _, found := cpuNames[a.Pin]; !found {
			ae.Add(fmt.Errorf("board name '%s' refers to unknown pin '%s'", a.Name, a.Pin))
		}
	}
	for _, i := range d.Init {
		_, isCPU := cpuNames[i.Pin]
		_, isBoard := aliases[i.Pin]
		if !isCPU && !isBoard {
			ae.Add(fmt.Errorf("startup configuration refers to unknown pin '%s'", i.Pin))
		}
		if err := i.Config.Validate(); err != nil {
			ae.Add(fmt.Errorf("startup configuration of pin '%s': %s", i.Pin, err))
		}
	}
	if ae.IsEmpty() {
		return nil
	}
	return errors.Wrapf(ValidationError, "board '%s': %s", d.Name, ae.Error())
}

// Build validates the description and creates the canonical pin handles
// and both registries. Every pin gets exactly one handle.
func (d Description) Build() (*Board, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	cpuEntries := make([]pins.Entry, 0, len(d.Pins))
	byName := make(map[string]*pins.Pin, len(d.Pins))
	for _, pd := range d.Pins {
		afs := make([]pins.AltFunc, 0, len(pd.AF))
		for _, af := range pd.AF {
			afs = append(afs, pins.NewAltFunc(af.Name, af.Index, af.Reg))
		}
		gpioBase := pd.GPIOBase
		if gpioBase == 0 {
			gpioBase = d.GPIOBase
		}
		p := pins.NewPin(pd.Name, pd.Port, pd.Pin, gpioBase, afs...)
		byName[pd.Name] = p
		cpuEntries = append(cpuEntries, pins.Entry{Name: pd.Name, Pin: p})
	}
	boardEntries := make([]pins.Entry, 0, len(d.Aliases))
	for _, a := range d.Aliases {
		boardEntries = append(boardEntries, pins.Entry{Name: a.Name, Pin: byName[a.Pin]})
	}
	cpu, err := pins.NewRegistry("cpu", cpuEntries...)
	if err != nil {
		return nil, maskAny(err)
	}
	board, err := pins.NewRegistry("board", boardEntries...)
	if err != nil {
		return nil, maskAny(err)
	}
	return &Board{
		Name:  d.Name,
		Board: board,
		CPU:   cpu,
		Init:  d.Init,
	}, nil
}

// Parse decodes a board description from JSON.
func Parse(data []byte) (Description, error) {
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return Description{}, errors.Wrap(err, "failed to parse board description")
	}
	return d, nil
}

// Load reads, validates and builds the board in the given file.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read board file '%s'", path)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return d.Build()
}

// Default builds the built-in LPCXpresso54608 board.
func Default() (*Board, error) {
	d, err := Parse(defaultBoardJSON)
	if err != nil {
		return nil, err
	}
	return d.Build()
}
