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
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/binkynet/PinMux/pkg/iocon"
	"github.com/binkynet/PinMux/pkg/pins"
	"github.com/binkynet/PinMux/pkg/resolver"
	"github.com/binkynet/PinMux/pkg/service/pinctl"
)

// PinInfo is the JSON form of a pin and its current state.
type PinInfo struct {
	Name   string     `json:"name"`
	Names  []string   `json:"names"`
	Render string     `json:"render"`
	Mode   iocon.Mode `json:"mode"`
	Pull   iocon.Pull `json:"pull"`
	AF     uint8      `json:"af"`
	AFList []AFInfo   `json:"af_list,omitempty"`
	Value  bool       `json:"value"`
}

// AFInfo is the JSON form of an alternate function.
type AFInfo struct {
	Name  string `json:"name"`
	Index uint8  `json:"index"`
}

// ConfigureRequest holds the fields of PUT /pins/:id that are not part
// of iocon.Config. Function selects an alternate function by name and
// overrides "alt" and "af".
type ConfigureRequest struct {
	Function string `json:"function,omitempty"`
}

// ValueRequest is the body of PUT /pins/:id/value.
type ValueRequest struct {
	Value bool `json:"value"`
}

// ResolverInfo is the JSON form of the resolver state.
// Map holds alias -> cpu pin name.
type ResolverInfo struct {
	Debug *bool             `json:"debug,omitempty"`
	Map   map[string]string `json:"map,omitempty"`
}

type pinAPI struct {
	log zerolog.Logger
	ctl *pinctl.Controller
}

func (a *pinAPI) register(e *echo.Echo) {
	e.GET("/pins", a.listPins)
	e.GET("/pins/:id", a.getPin)
	e.PUT("/pins/:id", a.configurePin)
	e.GET("/pins/:id/value", a.getValue)
	e.PUT("/pins/:id/value", a.setValue)
	e.GET("/resolver", a.getResolver)
	e.PUT("/resolver", a.setResolver)
}

func (a *pinAPI) resolve(c echo.Context) (*pins.Pin, error) {
	return a.ctl.Resolver().ResolveAny(c.Param("id"))
}

func (a *pinAPI) info(p *pins.Pin) (PinInfo, error) {
	d, err := a.ctl.Descriptor(p)
	if err != nil {
		return PinInfo{}, err
	}
	value, err := a.ctl.Value(p)
	if err != nil {
		return PinInfo{}, err
	}
	return PinInfo{
		Name:   p.Name(),
		Names:  a.ctl.Names(p),
		Render: pinctl.Describe(p, d),
		Mode:   iocon.DecodeMode(d),
		Pull:   iocon.DecodePull(d),
		AF:     iocon.DecodeAF(d),
		AFList: lo.Map(a.ctl.AFList(p), func(af pins.AltFunc, _ int) AFInfo {
			return AFInfo{Name: af.Name(), Index: af.Index()}
		}),
		Value: value,
	}, nil
}

func (a *pinAPI) listPins(c echo.Context) error {
	var result []PinInfo
	for _, p := range a.ctl.Resolver().CPU().Pins() {
		info, err := a.info(p)
		if err != nil {
			return err
		}
		result = append(result, info)
	}
	return c.JSON(http.StatusOK, result)
}

func (a *pinAPI) getPin(c echo.Context) error {
	p, err := a.resolve(c)
	if err != nil {
		return err
	}
	info, err := a.info(p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (a *pinAPI) configurePin(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	var conf iocon.Config
	var req ConfigureRequest
	if err := json.Unmarshal(body, &conf); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	p, err := a.resolve(c)
	if err != nil {
		return err
	}
	if req.Function != "" {
		af, found := p.FindAFByName(req.Function)
		if !found {
			return errors.Wrapf(iocon.InvalidAlternateFunctionError, "pin '%s' has no alternate function '%s'", p.Name(), req.Function)
		}
		conf.Alt = af.Index()
	}
	if err := a.ctl.Apply(p, conf); err != nil {
		return err
	}
	info, err := a.info(p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (a *pinAPI) getValue(c echo.Context) error {
	p, err := a.resolve(c)
	if err != nil {
		return err
	}
	v, err := a.ctl.Value(p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ValueRequest{Value: v})
}

func (a *pinAPI) setValue(c echo.Context) error {
	var req ValueRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	p, err := a.resolve(c)
	if err != nil {
		return err
	}
	if err := a.ctl.SetValue(p, req.Value); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

func (a *pinAPI) getResolver(c echo.Context) error {
	state := a.ctl.Resolver().State()
	debug := state.Debug()
	info := ResolverInfo{Debug: &debug}
	if m, ok := state.MappingTable().(resolver.Map); ok {
		info.Map = make(map[string]string, len(m))
		for k, p := range m {
			if name, ok := k.(string); ok && p != nil {
				info.Map[name] = p.Name()
			}
		}
	}
	return c.JSON(http.StatusOK, info)
}

func (a *pinAPI) setResolver(c echo.Context) error {
	var req ResolverInfo
	if err := c.Bind(&req); err != nil {
		return err
	}
	r := a.ctl.Resolver()
	if req.Map != nil {
		m, err := BuildMap(r, req.Map)
		if err != nil {
			return err
		}
		if len(m) == 0 {
			r.State().SetMappingTable(nil)
		} else {
			r.State().SetMappingTable(m)
		}
	}
	if req.Debug != nil {
		r.State().SetDebug(*req.Debug)
	}
	a.log.Info().
		Bool("debug", r.State().Debug()).
		Strs("aliases", sortedKeys(req.Map)).
		Msg("Resolver state updated")
	return a.getResolver(c)
}

// BuildMap creates a mapping table from alias -> pin name entries.
// Pin names are looked up in the board registry first, then in the
// cpu registry.
func BuildMap(r *resolver.Resolver, entries map[string]string) (resolver.Map, error) {
	m := make(resolver.Map, len(entries))
	for alias, name := range entries {
		p, found := r.Board().Lookup(name)
		if !found {
			p, found = r.CPU().Lookup(name)
		}
		if !found {
			return nil, errors.Wrapf(resolver.InvalidIdentifierError, "pin '%s' of alias '%s' not a valid pin identifier", name, alias)
		}
		m[alias] = p
	}
	return m, nil
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
