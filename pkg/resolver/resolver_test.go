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

package resolver

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinMux/pkg/pins"
)

type fixture struct {
	a, b, c *pins.Pin
	board   *pins.Registry
	cpu     *pins.Registry
}

func newFixture() fixture {
	a := pins.NewPin("P0_29", 0, 29, 0x4008C000)
	b := pins.NewPin("P0_30", 0, 30, 0x4008C000)
	c := pins.NewPin("P3_3", 3, 3, 0x4008C000)
	return fixture{
		a: a, b: b, c: c,
		board: pins.MustNewRegistry("board",
			pins.Entry{Name: "X1", Pin: a},
			pins.Entry{Name: "X2", Pin: b},
			// Board alias that shadows a cpu name
			pins.Entry{Name: "P3_3", Pin: a}),
		cpu: pins.MustNewRegistry("cpu",
			pins.Entry{Name: "P0_29", Pin: a},
			pins.Entry{Name: "P0_30", Pin: b},
			pins.Entry{Name: "P3_3", Pin: c}),
	}
}

func (f fixture) resolver(log zerolog.Logger) *Resolver {
	return New(log, NewState(), f.board, f.cpu)
}

func TestResolvePinIsIdentity(t *testing.T) {
	f := newFixture()
	r := f.resolver(zerolog.Nop())
	// Even a mapper that would map everything elsewhere is not consulted.
	r.State().SetMapper(MapperFunc(func(Identifier) any { return f.c }))
	for _, p := range []*pins.Pin{f.a, f.b, f.c} {
		got, err := r.Resolve(Of(p))
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != p {
			t.Errorf("Resolve(%s) = %s; want same handle", p, got)
		}
	}
}

func TestResolveRegistries(t *testing.T) {
	f := newFixture()
	r := f.resolver(zerolog.Nop())
	tests := []struct {
		id   Identifier
		want *pins.Pin
	}{
		{Name("X1"), f.a},
		{Name("X2"), f.b},
		{Name("P0_30"), f.b},
		{Name("P3_3"), f.a}, // board before cpu
		{Key{V: "X2"}, f.b},
	}
	for _, test := range tests {
		got, err := r.Resolve(test.id)
		if err != nil {
			t.Errorf("Resolve(%s) failed: %v", test.id, err)
		} else if got != test.want {
			t.Errorf("Resolve(%s) = %s; want %s", test.id, got, test.want)
		}
	}
}

func TestResolveInvalid(t *testing.T) {
	f := newFixture()
	r := f.resolver(zerolog.Nop())
	_, err := r.Resolve(Name("X99"))
	if !IsInvalidIdentifier(err) {
		t.Fatalf("expected invalid identifier, got %v", err)
	}
	if !strings.Contains(err.Error(), "pin 'X99' not a valid pin identifier") {
		t.Errorf("unexpected message: %s", err)
	}
	if _, err := r.Resolve(Key{V: 42}); !IsInvalidIdentifier(err) || !strings.Contains(err.Error(), "'42'") {
		t.Errorf("expected invalid identifier for 42, got %v", err)
	}
	if _, err := r.Resolve(nil); !IsInvalidIdentifier(err) {
		t.Errorf("expected invalid identifier for nil, got %v", err)
	}
	// Failures leave the state untouched.
	if r.State().Mapper() != nil || r.State().MappingTable() != nil || r.State().Debug() {
		t.Error("state changed by failed resolution")
	}
}

func TestResolvePriority(t *testing.T) {
	f := newFixture()
	r := f.resolver(zerolog.Nop())
	r.State().SetMappingTable(Map{"X1": f.c, "LeftMotorDir": f.b})

	// Mapping table wins over the board registry.
	if got, _ := r.Resolve(Name("X1")); got != f.c {
		t.Errorf("mapping table did not take precedence, got %s", got)
	}

	// Mapper wins over the mapping table.
	r.State().SetMapper(MapperFunc(func(id Identifier) any {
		if id.Value() == "X1" {
			return f.b
		}
		return NoMatch
	}))
	if got, _ := r.Resolve(Name("X1")); got != f.b {
		t.Errorf("mapper did not take precedence, got %s", got)
	}
	// Mapper returns NoMatch, mapping table is consulted next.
	if got, _ := r.Resolve(Name("LeftMotorDir")); got != f.b {
		t.Errorf("mapping table not consulted after NoMatch, got %s", got)
	}
	// Neither maps it, board registry is used.
	if got, _ := r.Resolve(Name("X2")); got != f.b {
		t.Errorf("board registry not consulted, got %s", got)
	}

	// nil is treated as NoMatch.
	r.State().SetMapper(MapperFunc(func(Identifier) any { return nil }))
	if got, _ := r.Resolve(Name("X1")); got != f.c {
		t.Errorf("nil from mapper did not fall through, got %s", got)
	}

	// Removing both hooks restores plain registry lookup.
	r.State().SetMapper(nil)
	r.State().SetMappingTable(nil)
	if got, _ := r.Resolve(Name("X1")); got != f.a {
		t.Errorf("expected board lookup, got %s", got)
	}
}

func TestResolveOpaqueKey(t *testing.T) {
	f := newFixture()
	r := f.resolver(zerolog.Nop())
	type motor struct{ side string }
	r.State().SetMappingTable(Map{motor{"left"}: f.c})

	if got, err := r.Resolve(Key{V: motor{"left"}}); err != nil || got != f.c {
		t.Errorf("Resolve(motor) = %v, %v", got, err)
	}
	// Uncomparable keys are not found instead of panicking.
	if _, err := r.Resolve(Key{V: []int{1}}); !IsInvalidIdentifier(err) {
		t.Errorf("expected invalid identifier, got %v", err)
	}
}

func TestMapperContractViolation(t *testing.T) {
	f := newFixture()
	r := f.resolver(zerolog.Nop())
	r.State().SetMapper(MapperFunc(func(Identifier) any { return 7 }))
	r.State().SetMappingTable(Map{"X1": f.a})

	for _, id := range []Identifier{Name("X1"), Name("nothing"), Key{V: 3.5}} {
		if _, err := r.Resolve(id); !IsMapperContractViolation(err) {
			t.Errorf("Resolve(%s): expected mapper contract violation, got %v", id, err)
		}
	}

	var nilPin *pins.Pin
	r.State().SetMapper(MapperFunc(func(Identifier) any { return nilPin }))
	if _, err := r.Resolve(Name("X1")); !IsMapperContractViolation(err) {
		t.Errorf("expected mapper contract violation for nil pin, got %v", err)
	}
}

func TestDebugTrace(t *testing.T) {
	f := newFixture()
	var buf bytes.Buffer
	r := f.resolver(zerolog.New(&buf).Level(zerolog.DebugLevel))

	if _, err := r.Resolve(Name("X1")); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("trace written while debug is off: %s", buf.String())
	}

	r.State().SetDebug(true)
	r.State().SetMapper(MapperFunc(func(Identifier) any { return NoMatch }))
	got, err := r.Resolve(Name("P0_30"))
	if err != nil || got != f.b {
		t.Fatalf("Resolve = %v, %v", got, err)
	}
	out := buf.String()
	for _, expected := range []string{`"strategy":"cpu"`, `"pin":"Pin.cpu.P0_30"`, "Pin.mapper returned", `"result":"NoMatch"`} {
		if !strings.Contains(out, expected) {
			t.Errorf("trace does not contain %s: %s", expected, out)
		}
	}
}

func TestDebugTraceIgnoresLogLevel(t *testing.T) {
	f := newFixture()
	var buf bytes.Buffer
	r := f.resolver(zerolog.New(&buf).Level(zerolog.InfoLevel))
	r.State().SetDebug(true)
	if _, err := r.Resolve(Name("X1")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"strategy":"board"`) {
		t.Errorf("no trace at info level: %q", buf.String())
	}
}

func TestResolveAnyCountsStrategies(t *testing.T) {
	f := newFixture()
	r := New(zerolog.Nop(), nil, f.board, f.cpu)
	before := map[string]float64{}
	for _, s := range []string{StrategyPin, StrategyBoard, StrategyCPU} {
		before[s] = testutil.ToFloat64(resolveCounters.WithLabelValues(s))
	}
	notFound := testutil.ToFloat64(resolveErrorCounters.WithLabelValues("not_found"))

	r.ResolveAny(f.a)
	r.ResolveAny("X1")
	r.ResolveAny("P0_30")
	if _, err := r.ResolveAny("bogus"); !IsInvalidIdentifier(err) {
		t.Errorf("expected invalid identifier, got %v", err)
	}
	for _, s := range []string{StrategyPin, StrategyBoard, StrategyCPU} {
		if got := testutil.ToFloat64(resolveCounters.WithLabelValues(s)) - before[s]; got != 1 {
			t.Errorf("strategy %s counted %v times; want 1", s, got)
		}
	}
	if got := testutil.ToFloat64(resolveErrorCounters.WithLabelValues("not_found")) - notFound; got != 1 {
		t.Errorf("not_found counted %v times; want 1", got)
	}
}
