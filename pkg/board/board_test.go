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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/binkynet/PinMux/pkg/iocon"
)

func TestDefaultBoard(t *testing.T) {
	b, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if b.Name != "LPCXpresso54608" {
		t.Errorf("Name = %s", b.Name)
	}
	rx, found := b.Board.Lookup("DEBUG_UART_RX")
	if !found {
		t.Fatal("DEBUG_UART_RX not found")
	}
	cpu, found := b.CPU.Lookup("P0_29")
	if !found || cpu != rx {
		t.Errorf("board and cpu registries do not share handles")
	}
	if rx.Port() != 0 || rx.Number() != 29 || rx.GPIOBase() != 0x4008C000 {
		t.Errorf("unexpected pin %s: port %d pin %d gpio 0x%x", rx, rx.Port(), rx.Number(), rx.GPIOBase())
	}
	if af, found := rx.FindAF(1); !found || af.Name() != "FC0_RXD_SDA_MOSI" || af.Reg() != 0x40086000 {
		t.Errorf("unexpected af %v", af)
	}
	sda, _ := b.CPU.Lookup("P3_23")
	if got, want := b.Board.Aliases(sda), []string{"I2C_SDA", "D14"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Aliases(P3_23) = %v; want %v", got, want)
	}
	if len(b.Init) != 4 || b.Init[3].Pin != "USER_BTN" || b.Init[3].Config.Pull != iocon.PullUp || !b.Init[3].Config.Filter {
		t.Errorf("unexpected startup configurations %+v", b.Init)
	}
	if b.Init[0].Config.Mode != iocon.ModeOutput || b.Init[0].Config.Value == nil || *b.Init[0].Config.Value {
		t.Errorf("unexpected LED1 configuration %+v", b.Init[0])
	}
}

func TestValidate(t *testing.T) {
	d := Description{
		Name: "broken",
		Pins: []PinDescription{
			{Name: "P0_1", Port: 0, Pin: 1},
			{Name: "P0_1", Port: 0, Pin: 2},
			{Name: "P0_3", Port: 0, Pin: 1},
			{Name: "P9_0", Port: 9, Pin: 0},
			{Name: "P0_4", Port: 0, Pin: 4, AF: []AltFuncDescription{{Name: "X", Index: 16}, {Index: 2}}},
		},
		Aliases: []AliasDescription{
			{Name: "A", Pin: "P0_1"},
			{Name: "A", Pin: "P0_3"},
			{Name: "B", Pin: "P7_7"},
		},
		Init: []InitDescription{
			{Pin: "A"},
			{Pin: "Q", Config: iocon.Config{Mode: iocon.Mode(9)}},
		},
	}
	err := d.Validate()
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg := err.Error()
	for _, expected := range []string{
		"duplicate pin name 'P0_1'",
		"share location P0_1",
		"invalid location P9_0",
		"invalid index 16",
		"alternate function 2 of pin 'P0_4' has no name",
		"duplicate board name 'A'",
		"unknown pin 'P7_7'",
	} {
		if !strings.Contains(msg, expected) {
			t.Errorf("error does not mention %q: %s", expected, msg)
		}
	}
	if _, err := d.Build(); !IsValidation(err) {
		t.Errorf("Build must validate, got %v", err)
	}
	if err := (Description{Name: "empty"}).Validate(); !IsValidation(err) {
		t.Errorf("expected validation error for empty board, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	content := `{
		"name": "mini",
		"gpio_base": 1074315264,
		"pins": [
			{"name": "P1_4", "port": 1, "pin": 4, "af": [{"name": "FC5_SCK", "index": 1, "reg": 1074356224}]},
			{"name": "P1_5", "port": 1, "pin": 5, "gpio_base": 1}
		],
		"board": [{"name": "X1", "pin": "P1_4"}]
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	x1, _ := b.Board.Lookup("X1")
	if x1 == nil || x1.Name() != "P1_4" || x1.AFCount() != 1 {
		t.Errorf("unexpected X1: %v", x1)
	}
	p15, _ := b.CPU.Lookup("P1_5")
	if p15.GPIOBase() != 1 {
		t.Errorf("pin gpio_base not used: 0x%x", p15.GPIOBase())
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	os.WriteFile(path, []byte("{"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestParseInitRequiresMode(t *testing.T) {
	_, err := Parse([]byte(`{"name": "mini", "init": [{"pin": "X1", "mode": "OUT"}, {"pin": "X2", "pull": "PULL_UP"}]}`))
	if !iocon.IsInvalidMode(err) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
	if !strings.Contains(err.Error(), "pin 'X2'") {
		t.Errorf("error does not name the pin: %v", err)
	}
	d, err := Parse([]byte(`{"name": "mini", "init": [{"pin": "X1", "mode": "OPEN_DRAIN", "alt": 2}]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.Init) != 1 || d.Init[0].Pin != "X1" || d.Init[0].Config.Mode != iocon.ModeOpenDrain || d.Init[0].Config.Alt != 2 {
		t.Errorf("unexpected startup configurations %+v", d.Init)
	}
}
