//    Copyright 2017 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package bridge

import (
	"os"
	"strconv"
	"sync"

	"github.com/ecc1/gpio"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

const (
	sysfsUnexportPath = "/sys/class/gpio/unexport"
)

// SysfsConfig configures a bridge on top of the Linux sysfs GPIO interface.
type SysfsConfig struct {
	// Linux GPIO number of pin P0_0. Pin Px_y maps to LineBase + 32*x + y.
	LineBase int
	// If set, all lines are used active low.
	ActiveLow bool
}

// line holds the state of a single exported GPIO line.
type line struct {
	in    InputPin
	out   OutputPin
	latch bool
}

type sysfsBridge struct {
	SysfsConfig
	log        zerolog.Logger
	mutex      sync.Mutex
	mux        map[uint16]uint32
	lines      map[uint16]*line
	portClocks uint32
	closed     bool

	openInput   func(number int, activeLow bool) (InputPin, error)
	openOutput  func(number int, activeLow bool, initialValue bool) (OutputPin, error)
	unexportPin func(number int) error
}

// NewSysfsBridge implements the bridge for Linux hosts that expose their
// GPIO lines through sysfs. The host has no pin multiplexer that user space
// can reach, so multiplexer registers are kept in memory, while direction
// and data bits drive the real lines.
func NewSysfsBridge(conf SysfsConfig, log zerolog.Logger) API {
	return &sysfsBridge{
		SysfsConfig: conf,
		log:         log.With().Str("component", "sysfs-bridge").Logger(),
		mux:         make(map[uint16]uint32),
		lines:       make(map[uint16]*line),
		openInput: func(number int, activeLow bool) (InputPin, error) {
			return gpio.Input(number, activeLow)
		},
		openOutput: func(number int, activeLow bool, initialValue bool) (OutputPin, error) {
			return gpio.Output(number, activeLow, initialValue)
		},
		unexportPin: func(number int) error {
			return os.WriteFile(sysfsUnexportPath, []byte(strconv.Itoa(number)), 0644)
		},
	}
}

func key(port, pin uint8) uint16 {
	return uint16(port)<<8 | uint16(pin)
}

// lineNumber returns the Linux GPIO number of the given pin.
func (p *sysfsBridge) lineNumber(port, pin uint8) int {
	return p.LineBase + int(port)*PinsPerPort + int(pin)
}

// Name of the bridge implementation.
func (p *sysfsBridge) Name() string {
	return "sysfs"
}

// ReadMux returns the multiplexer register of the given pin.
func (p *sysfsBridge) ReadMux(port, pin uint8) (uint32, error) {
	if err := validatePin(port, pin); err != nil {
		return 0, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.mux[key(port, pin)], nil
}

// WriteMux stores the multiplexer register of the given pin.
func (p *sysfsBridge) WriteMux(port, pin uint8, value uint32) error {
	if err := validatePin(port, pin); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	p.mux[key(port, pin)] = value
	muxWriteCounters.WithLabelValues(p.Name()).Inc()
	return nil
}

// EnableMuxClock has no effect on sysfs hosts.
func (p *sysfsBridge) EnableMuxClock() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	return nil
}

// EnablePortClock records the port as enabled; clocks are managed
// by the kernel on sysfs hosts.
func (p *sysfsBridge) EnablePortClock(port uint8) error {
	if err := validatePin(port, 0); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	if p.portClocks&(1<<port) == 0 {
		p.log.Debug().Uint8("port", port).Msg("Enabled port")
		p.portClocks |= 1 << port
	}
	return nil
}

// getLine returns the state of the given pin, creating it when needed.
func (p *sysfsBridge) getLine(port, pin uint8) *line {
	k := key(port, pin)
	l, found := p.lines[k]
	if !found {
		l = &line{}
		p.lines[k] = l
	}
	return l
}

// ReadBit returns the logic level of the given pin.
func (p *sysfsBridge) ReadBit(port, pin uint8) (bool, error) {
	if err := validatePin(port, pin); err != nil {
		return false, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	l := p.getLine(port, pin)
	if l.in == nil {
		// Outputs and unconfigured lines read back their data bit.
		return l.latch, nil
	}
	value, err := l.in.Read()
	if err != nil {
		gpioErrorCounters.WithLabelValues("read").Inc()
		return false, errors.Wrapf(err, "Read[%d] failed", p.lineNumber(port, pin))
	}
	return value, nil
}

// WriteBit sets the output data bit of the given pin.
// If the pin is not an output yet, the value is used when it becomes one.
func (p *sysfsBridge) WriteBit(port, pin uint8, value bool) error {
	if err := validatePin(port, pin); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	l := p.getLine(port, pin)
	l.latch = value
	if l.out != nil {
		if err := l.out.Write(value); err != nil {
			gpioErrorCounters.WithLabelValues("write").Inc()
			return errors.Wrapf(err, "Write[%d] failed", p.lineNumber(port, pin))
		}
	}
	return nil
}

// SetDirection makes the given pin an output (true) or input (false).
func (p *sysfsBridge) SetDirection(port, pin uint8, output bool) error {
	if err := validatePin(port, pin); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	l := p.getLine(port, pin)
	number := p.lineNumber(port, pin)
	if output {
		if l.out != nil {
			return nil
		}
		out, err := p.openOutput(number, p.ActiveLow, l.latch)
		if err != nil {
			gpioErrorCounters.WithLabelValues("output").Inc()
			return errors.Wrapf(err, "Output[%d] failed", number)
		}
		l.in, l.out = nil, out
	} else {
		if l.in != nil {
			return nil
		}
		in, err := p.openInput(number, p.ActiveLow)
		if err != nil {
			gpioErrorCounters.WithLabelValues("input").Inc()
			return errors.Wrapf(err, "Input[%d] failed", number)
		}
		l.in, l.out = in, nil
	}
	return nil
}

// IsOutput returns true when the given pin is an output.
func (p *sysfsBridge) IsOutput(port, pin uint8) (bool, error) {
	if err := validatePin(port, pin); err != nil {
		return false, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	l, found := p.lines[key(port, pin)]
	return found && l.out != nil, nil
}

// Close unexports all lines used by the bridge.
// Afterwards all writes fail with ClosedError.
func (p *sysfsBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var result error
	for k, l := range p.lines {
		if l.in == nil && l.out == nil {
			continue
		}
		number := p.lineNumber(uint8(k>>8), uint8(k&0xFF))
		if err := p.unexportPin(number); err != nil {
			multierr.AppendInto(&result, errors.Wrapf(err, "Unexport[%d] failed", number))
		}
	}
	p.lines = make(map[uint16]*line)
	p.closed = true
	return result
}
