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

// API of the bridge, the hardware that holds the pin multiplexer
// registers and the GPIO blocks of the chip.
type API interface {
	// Name of the bridge implementation, used in logs and metrics.
	Name() string

	// Access to the pin multiplexer

	// ReadMux returns the multiplexer register of the given pin.
	ReadMux(port, pin uint8) (uint32, error)
	// WriteMux stores the multiplexer register of the given pin
	// in a single write.
	WriteMux(port, pin uint8, value uint32) error
	// EnableMuxClock enables the clock of the multiplexer block.
	EnableMuxClock() error

	// Access to the GPIO blocks

	// EnablePortClock enables the clock of the GPIO block of the given port.
	// Enabling an already enabled clock has no effect.
	EnablePortClock(port uint8) error
	DigitalIO

	// Close releases the hardware. Reads keep working afterwards,
	// writes and clock enables fail with ClosedError.
	Close() error
}

// DigitalIO reads and writes the data and direction bits of GPIO pins.
type DigitalIO interface {
	// ReadBit returns the logic level of the given pin.
	ReadBit(port, pin uint8) (bool, error)
	// WriteBit sets the output data bit of the given pin.
	WriteBit(port, pin uint8, value bool) error
	// SetDirection makes the given pin an output (true) or input (false).
	SetDirection(port, pin uint8, output bool) error
	// IsOutput returns true when the direction bit of the given pin is set.
	IsOutput(port, pin uint8) (bool, error)
}

// InputPin is the interface satisfied by GPIO input pins.
type InputPin interface {
	Read() (bool, error)
}

// OutputPin is the interface satisfied by GPIO output pins.
type OutputPin interface {
	Write(bool) error
}

const (
	// Number of pins in a port
	PinsPerPort = 32
	// Highest number of ports supported by the bridges
	MaxPorts = 8
)

func validatePin(port, pin uint8) error {
	if port >= MaxPorts || pin >= PinsPerPort {
		return InvalidPin("invalid pin P%d_%d", port, pin)
	}
	return nil
}
