//    Copyright 2017-2026 Ewout Prangsma
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

package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/binkynet/PinMux/pkg/board"
	"github.com/binkynet/PinMux/pkg/resolver"
	"github.com/binkynet/PinMux/pkg/service/bridge"
	"github.com/binkynet/PinMux/pkg/service/pinctl"
	"github.com/binkynet/PinMux/pkg/service/util"
)

const (
	defaultSampleInterval = time.Second * 5
)

type Service interface {
	// Run the service until the given context is cancelled.
	Run(ctx context.Context) error
	// StartedAt returns the time Run was called.
	StartedAt() time.Time
}

type Config struct {
	ProgramVersion string
	// Configurations applied when the service starts
	InitialPins []board.InitDescription
	// Interval between pin level samples
	SampleInterval time.Duration
}

type Dependencies struct {
	Logger     zerolog.Logger
	Bridge     bridge.API
	Controller *pinctl.Controller
}

type service struct {
	Config
	Dependencies

	mutex     sync.Mutex
	startedAt time.Time
}

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	if conf.SampleInterval <= 0 {
		conf.SampleInterval = defaultSampleInterval
	}
	return &service{
		Config:       conf,
		Dependencies: deps,
	}, nil
}

// StartedAt returns the time Run was called.
func (s *service) StartedAt() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.startedAt
}

// Run applies the startup configurations, then samples the level of
// all pins until the given context is canceled.
// The bridge is closed when Run returns.
func (s *service) Run(ctx context.Context) (result error) {
	log := s.Logger.With().Str("bridge", s.Bridge.Name()).Logger()
	defer func() {
		if err := s.Bridge.Close(); err != nil {
			result = multierr.Append(result, err)
		}
	}()
	s.mutex.Lock()
	s.startedAt = time.Now()
	s.mutex.Unlock()

	if err := s.applyInitialPins(log); err != nil {
		return err
	}
	log.Info().
		Str("version", s.ProgramVersion).
		Int("initial-pins", len(s.InitialPins)).
		Msg("Service started")

	return util.UntilCanceled(ctx, log, "pin sampling", s.SampleInterval, s.sample)
}

// applyInitialPins applies all startup configurations.
// All of them are tried, failures are combined.
func (s *service) applyInitialPins(log zerolog.Logger) error {
	var result error
	for _, i := range s.InitialPins {
		p, err := s.Controller.Init(resolver.Name(i.Pin), i.Config)
		if err != nil {
			initialPinErrorsTotal.Inc()
			log.Error().Err(err).Str("pin", i.Pin).Msg("Failed to apply startup configuration")
			result = multierr.Append(result, err)
			continue
		}
		initialPinsTotal.Inc()
		log.Debug().Str("pin", i.Pin).Str("cpu", p.Name()).Msg("Applied startup configuration")
	}
	return result
}

// sample reads the level of all cpu pins into the pin level gauges.
func (s *service) sample(ctx context.Context) error {
	var result error
	for _, p := range s.Controller.Resolver().CPU().Pins() {
		if ctx.Err() != nil {
			return nil
		}
		v, err := s.Controller.Value(p)
		if err != nil {
			result = multierr.Append(result, err)
			continue
		}
		level := 0.0
		if v {
			level = 1
		}
		pinLevelGauges.WithLabelValues(p.Name()).Set(level)
	}
	return result
}
