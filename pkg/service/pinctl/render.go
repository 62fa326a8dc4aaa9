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
package pinctl

import (
	"fmt"
	"strings"

	"github.com/binkynet/PinMux/pkg/iocon"
	"github.com/binkynet/PinMux/pkg/pins"
)

// Describe renders the given descriptor of the given pin.
//
//	Pin(Pin.cpu.P0_29, mode=Pin.ANALOG)
//	Pin(Pin.cpu.P2_2, mode=Pin.OUT, func=GPIO)
//	Pin(Pin.cpu.P0_29, mode=Pin.IN, pull=Pin.PULL_UP, af=Pin.FC0_RXD_SDA_MOSI)
func Describe(p *pins.Pin, d iocon.Descriptor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pin(%s, mode=Pin.", p)
	if !d.IsDigital() {
		sb.WriteString("ANALOG)")
		return sb.String()
	}
	sb.WriteString(iocon.DecodeMode(d).String())
	if pull := iocon.DecodePull(d); pull != iocon.PullNone {
		fmt.Fprintf(&sb, ", pull=Pin.%s", pull)
	}
	sel := iocon.DecodeAF(d)
	switch af, found := p.FindAF(sel); {
	case sel == 0:
		sb.WriteString(", func=GPIO")
	case found:
		fmt.Fprintf(&sb, ", af=%s", af)
	default:
		fmt.Fprintf(&sb, ", af=%d", sel)
	}
	sb.WriteString(")")
	return sb.String()
}
