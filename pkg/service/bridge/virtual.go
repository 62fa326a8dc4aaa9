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
	"sync"
)

// VirtualBridge simulates the multiplexer and GPIO blocks in memory.
// All registers start at 0 (analog input, clocks off).
type VirtualBridge struct {
	mutex      sync.Mutex
	mux        [MaxPorts][PinsPerPort]uint32
	dir        [MaxPorts]uint32
	data       [MaxPorts]uint32
	input      [MaxPorts]uint32
	portClocks uint32
	muxClock   bool
	muxWrites  int
	closed     bool
}

// NewVirtualBridge implements the bridge for a virtual chip.
func NewVirtualBridge() *VirtualBridge {
	return &VirtualBridge{}
}

// Name of the bridge implementation.
func (p *VirtualBridge) Name() string {
	return "virtual"
}

// ReadMux returns the multiplexer register of the given pin.
func (p *VirtualBridge) ReadMux(port, pin uint8) (uint32, error) {
	if err := validatePin(port, pin); err != nil {
		return 0, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.mux[port][pin], nil
}

// WriteMux stores the multiplexer register of the given pin.
func (p *VirtualBridge) WriteMux(port, pin uint8, value uint32) error {
	if err := validatePin(port, pin); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	p.mux[port][pin] = value
	p.muxWrites++
	muxWriteCounters.WithLabelValues(p.Name()).Inc()
	return nil
}

// EnableMuxClock enables the clock of the multiplexer block.
func (p *VirtualBridge) EnableMuxClock() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	p.muxClock = true
	return nil
}

// EnablePortClock enables the clock of the GPIO block of the given port.
func (p *VirtualBridge) EnablePortClock(port uint8) error {
	if err := validatePin(port, 0); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	p.portClocks |= 1 << port
	return nil
}

// ReadBit returns the logic level of the given pin.
// Outputs read back their data bit, inputs the simulated level.
func (p *VirtualBridge) ReadBit(port, pin uint8) (bool, error) {
	if err := validatePin(port, pin); err != nil {
		return false, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	mask := uint32(1) << pin
	if p.dir[port]&mask != 0 {
		return p.data[port]&mask != 0, nil
	}
	return p.input[port]&mask != 0, nil
}

// WriteBit sets the output data bit of the given pin.
func (p *VirtualBridge) WriteBit(port, pin uint8, value bool) error {
	if err := validatePin(port, pin); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	mask := uint32(1) << pin
	if value {
		p.data[port] |= mask
	} else {
		p.data[port] &^= mask
	}
	return nil
}

// SetDirection makes the given pin an output (true) or input (false).
func (p *VirtualBridge) SetDirection(port, pin uint8, output bool) error {
	if err := validatePin(port, pin); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ClosedError
	}
	mask := uint32(1) << pin
	if output {
		p.dir[port] |= mask
	} else {
		p.dir[port] &^= mask
	}
	return nil
}

// IsOutput returns true when the direction bit of the given pin is set.
func (p *VirtualBridge) IsOutput(port, pin uint8) (bool, error) {
	if err := validatePin(port, pin); err != nil {
		return false, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.dir[port]&(1<<pin) != 0, nil
}

// SetInputLevel simulates the level that an external circuit drives
// onto the given pin.
func (p *VirtualBridge) SetInputLevel(port, pin uint8, level bool) error {
	if err := validatePin(port, pin); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	mask := uint32(1) << pin
	if level {
		p.input[port] |= mask
	} else {
		p.input[port] &^= mask
	}
	return nil
}

// OutputLatch returns the data bit of the given pin, regardless of its direction.
func (p *VirtualBridge) OutputLatch(port, pin uint8) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.data[port%MaxPorts]&(1<<(pin%PinsPerPort)) != 0
}

// PortClockEnabled returns true when the clock of the given port is on.
func (p *VirtualBridge) PortClockEnabled(port uint8) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.portClocks&(1<<(port%MaxPorts)) != 0
}

// MuxClockEnabled returns true when the multiplexer clock is on.
func (p *VirtualBridge) MuxClockEnabled() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.muxClock
}

// MuxWrites returns the number of multiplexer register writes so far.
func (p *VirtualBridge) MuxWrites() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.muxWrites
}

// Close the bridge. Registers stay readable, all writes fail with ClosedError.
func (p *VirtualBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.closed = true
	return nil
}
