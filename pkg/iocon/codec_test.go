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
	"testing"
)

func TestEncodeLayout(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   Descriptor
	}{
		{"input", Config{Mode: ModeInput}, 0x300},
		{"input-filter", Config{Mode: ModeInput, Filter: true}, 0x100},
		{"output", Config{Mode: ModeOutput}, 0x700},
		{"open-drain-pullup", Config{Mode: ModeOpenDrain, Pull: PullUp}, 0xF20},
		{"input-pulldown-inverted", Config{Mode: ModeInput, Pull: PullDown, Invert: true}, 0x390},
		{"repeater", Config{Mode: ModeInput, Pull: PullRepeater}, 0x330},
		{"alt-3", Config{Mode: ModeAlt, Alt: 3}, 0x703},
		{"alt-open-drain-15", Config{Mode: ModeAltOpenDrain, Alt: 15}, 0xF0F},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Encode(test.config)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if got != test.want {
				t.Errorf("Encode = 0x%03x; want 0x%03x", uint32(got), uint32(test.want))
			}
		})
	}
}

func TestEncodeValidation(t *testing.T) {
	if _, err := Encode(Config{Mode: Mode(42)}); !IsInvalidMode(err) {
		t.Errorf("expected invalid mode, got %v", err)
	}
	if _, err := Encode(Config{Mode: ModeOutput, Pull: Pull(4)}); !IsInvalidPull(err) {
		t.Errorf("expected invalid pull, got %v", err)
	}
	if _, err := Encode(Config{Mode: ModeAlt, Alt: 16}); !IsInvalidAlternateFunction(err) {
		t.Errorf("expected invalid alternate function, got %v", err)
	}
	if _, err := Encode(Config{Mode: Mode(9), Pull: Pull(9)}); !IsInvalidMode(err) {
		t.Errorf("mode must be validated before pull, got %v", err)
	}
}

func TestSelectorPrecedence(t *testing.T) {
	tests := []struct {
		af, alt, want uint8
	}{
		{0, 0, 0},
		{4, 0, 4},
		{0, 2, 2},
		{4, 2, 2},
	}
	for _, test := range tests {
		c := Config{Mode: ModeAlt, AF: test.af, Alt: test.alt}
		if got := c.Selector(); got != test.want {
			t.Errorf("Selector(af=%d, alt=%d) = %d; want %d", test.af, test.alt, got, test.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	modes := []Mode{ModeInput, ModeOutput, ModeOpenDrain, ModeAlt, ModeAltOpenDrain}
	pulls := []Pull{PullNone, PullDown, PullUp, PullRepeater}
	for _, m := range modes {
		for _, p := range pulls {
			for alt := uint8(0); alt <= MaxFunc; alt++ {
				for _, inv := range []bool{false, true} {
					c := Config{Mode: m, Pull: p, Alt: alt, Invert: inv, Filter: alt%2 == 0}
					d, err := Encode(c)
					if err != nil {
						t.Fatalf("Encode(%+v) failed: %v", c, err)
					}
					if got := DecodeMode(d); got != m.Direction() {
						t.Errorf("DecodeMode(%+v) = %s; want %s", c, got, m.Direction())
					}
					if got := DecodePull(d); got != p {
						t.Errorf("DecodePull(%+v) = %s; want %s", c, got, p)
					}
					if got := DecodeAF(d); got != alt {
						t.Errorf("DecodeAF(%+v) = %d; want %d", c, got, alt)
					}
					if !d.IsDigital() || d.Inverted() != inv || d.Filtered() != c.Filter {
						t.Errorf("flags of %+v wrong: 0x%03x", c, uint32(d))
					}
				}
			}
		}
	}
}

func TestDecodeAnalog(t *testing.T) {
	var d Descriptor
	if d.IsDigital() {
		t.Error("reset descriptor must be analog")
	}
	if DecodeMode(d) != ModeInput || DecodePull(d) != PullNone || DecodeAF(d) != 0 {
		t.Errorf("unexpected decode of reset descriptor")
	}
}

func TestParse(t *testing.T) {
	if m, err := ParseMode("Pin.open_drain"); err != nil || m != ModeOpenDrain {
		t.Errorf("ParseMode = %v, %v", m, err)
	}
	if _, err := ParseMode("SIDEWAYS"); !IsInvalidMode(err) {
		t.Errorf("expected invalid mode, got %v", err)
	}
	if p, err := ParsePull(""); err != nil || p != PullNone {
		t.Errorf("ParsePull('') = %v, %v", p, err)
	}
	if _, err := ParsePull("UP"); !IsInvalidPull(err) {
		t.Errorf("expected invalid pull, got %v", err)
	}
}

func TestConfigJSON(t *testing.T) {
	var c Config
	if err := json.Unmarshal([]byte(`{"mode":"OUT","pull":"PULL_UP","alt":3,"value":true}`), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if c.Mode != ModeOutput || c.Pull != PullUp || c.Alt != 3 || c.Value == nil || !*c.Value {
		t.Errorf("unexpected config %+v", c)
	}
	if err := json.Unmarshal([]byte(`{"mode":"FAST"}`), &c); !IsInvalidMode(err) {
		t.Errorf("expected invalid mode, got %v", err)
	}
}

func TestConfigJSONRequiresMode(t *testing.T) {
	for _, doc := range []string{`{}`, `{"pull":"PULL_UP","alt":3}`, `{"mode":null}`} {
		c := Config{Mode: ModeOutput}
		if err := json.Unmarshal([]byte(doc), &c); !IsInvalidMode(err) {
			t.Errorf("Unmarshal(%s): expected invalid mode, got %v", doc, err)
		}
		if c.Mode != ModeOutput {
			t.Errorf("Unmarshal(%s) changed the config to %+v", doc, c)
		}
	}
	var c Config
	if err := json.Unmarshal([]byte(`{"mode":"IN","filter":true}`), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if c.Mode != ModeInput || !c.Filter {
		t.Errorf("unexpected config %+v", c)
	}
}
