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

// Package pinctl configures and reads pins through a bridge, using the
// resolver to find pins and the iocon codec to pack their descriptors.
package pinctl

import (
	"sync"
	"time"

	pubsub "github.com/mattn/go-pubsub"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinMux/pkg/iocon"
	"github.com/binkynet/PinMux/pkg/pins"
	"github.com/binkynet/PinMux/pkg/resolver"
	"github.com/binkynet/PinMux/pkg/service/bridge"
)

// PinChanged is published after the configuration or output value of
// a pin has changed.
// Events are delivered asynchronously and may arrive out of order.
// Seq increases with every change, so a subscriber can drop stale events.
type PinChanged struct {
	Pin        *pins.Pin
	Descriptor iocon.Descriptor
	Value      bool
	ChangedAt  time.Time
	Seq        uint64
}

// Controller applies configurations to pins and reads their state back.
// All hardware access is serialized.
type Controller struct {
	log      zerolog.Logger
	resolver *resolver.Resolver
	bridge   bridge.API
	events   *pubsub.PubSub

	mutex sync.Mutex
	seq   uint64

	subMutex    sync.Mutex
	subscribers map[int]func(PinChanged)
	lastSubID   int
}

// New creates a Controller.
func New(log zerolog.Logger, r *resolver.Resolver, br bridge.API) *Controller {
	c := &Controller{
		log:         log.With().Str("component", "pinctl").Logger(),
		resolver:    r,
		bridge:      br,
		events:      pubsub.New(),
		subscribers: make(map[int]func(PinChanged)),
	}
	c.events.Sub(c.dispatch)
	go c.logSubscriberPanics()
	return c
}

// Resolver returns the resolver used by the controller.
func (c *Controller) Resolver() *resolver.Resolver { return c.resolver }

// Resolve the given identifier into a pin.
func (c *Controller) Resolve(id resolver.Identifier) (*pins.Pin, error) {
	return c.resolver.Resolve(id)
}

// Subscribe registers a callback that is invoked for every PinChanged event.
// The returned function removes this subscription only, even when the
// same callback is subscribed more than once.
func (c *Controller) Subscribe(cb func(PinChanged)) func() {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	c.lastSubID++
	id := c.lastSubID
	c.subscribers[id] = cb
	return func() {
		c.subMutex.Lock()
		defer c.subMutex.Unlock()
		delete(c.subscribers, id)
	}
}

// dispatch is the only pubsub subscriber, it fans events out
// to the callbacks registered with Subscribe.
func (c *Controller) dispatch(e PinChanged) {
	c.subMutex.Lock()
	callbacks := make([]func(PinChanged), 0, len(c.subscribers))
	for _, cb := range c.subscribers {
		callbacks = append(callbacks, cb)
	}
	c.subMutex.Unlock()
	for _, cb := range callbacks {
		cb(e)
	}
}

func (c *Controller) logSubscriberPanics() {
	for err := range c.events.Error() {
		c.log.Error().Err(err).Msg("PinChanged subscriber panicked")
	}
}

// publish must be called with c.mutex held.
func (c *Controller) publish(p *pins.Pin, d iocon.Descriptor, value bool) {
	c.seq++
	c.events.Pub(PinChanged{Pin: p, Descriptor: d, Value: value, ChangedAt: time.Now(), Seq: c.seq})
}

// Init resolves the given identifier and applies the configuration
// to the resulting pin.
func (c *Controller) Init(id resolver.Identifier, conf iocon.Config) (*pins.Pin, error) {
	p, err := c.resolver.Resolve(id)
	if err != nil {
		applyErrorCounters.WithLabelValues("resolve").Inc()
		return nil, err
	}
	if err := c.Apply(p, conf); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply the given configuration to the given pin.
// The configuration is validated before anything is written, so an
// invalid configuration leaves the pin untouched.
func (c *Controller) Apply(p *pins.Pin, conf iocon.Config) error {
	applyCounters.Inc()
	d, err := iocon.Encode(conf)
	if err != nil {
		applyErrorCounters.WithLabelValues(errorKind(err)).Inc()
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.writeDescriptor(p, conf, d); err != nil {
		applyErrorCounters.WithLabelValues("bridge").Inc()
		return err
	}
	c.log.Debug().
		Str("pin", p.Name()).
		Str("mode", conf.Mode.String()).
		Str("pull", conf.Pull.String()).
		Uint8("af", conf.Selector()).
		Str("descriptor", d.String()).
		Msg("Pin configured")
	value, err := c.bridge.ReadBit(p.Port(), p.Number())
	if err != nil {
		// The pin is configured, only its change event is lost.
		c.log.Warn().Err(err).Str("pin", p.Name()).Msg("Failed to read back pin value")
		return nil
	}
	c.publish(p, d, value)
	return nil
}

// writeDescriptor performs the hardware side of Apply.
func (c *Controller) writeDescriptor(p *pins.Pin, conf iocon.Config, d iocon.Descriptor) error {
	if err := c.bridge.EnableMuxClock(); err != nil {
		return maskAny(err)
	}
	if err := c.bridge.WriteMux(p.Port(), p.Number(), uint32(d)); err != nil {
		return maskAny(err)
	}
	if !conf.IsGPIO() {
		// The peripheral owns the pin, leave the GPIO block alone.
		return nil
	}
	if err := c.bridge.EnablePortClock(p.Port()); err != nil {
		return maskAny(err)
	}
	if !conf.Mode.IsOutput() {
		return maskAny(c.bridge.SetDirection(p.Port(), p.Number(), false))
	}
	if conf.Value != nil {
		if err := c.bridge.WriteBit(p.Port(), p.Number(), *conf.Value); err != nil {
			return maskAny(err)
		}
	}
	return maskAny(c.bridge.SetDirection(p.Port(), p.Number(), true))
}

// Descriptor reads the current multiplexer descriptor of the given pin.
func (c *Controller) Descriptor(p *pins.Pin) (iocon.Descriptor, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	v, err := c.bridge.ReadMux(p.Port(), p.Number())
	if err != nil {
		return 0, maskAny(err)
	}
	return iocon.Descriptor(v), nil
}

// Mode returns the direction class of the given pin.
func (c *Controller) Mode(p *pins.Pin) (iocon.Mode, error) {
	d, err := c.Descriptor(p)
	if err != nil {
		return 0, err
	}
	return iocon.DecodeMode(d), nil
}

// Pull returns the pull resistor mode of the given pin.
func (c *Controller) Pull(p *pins.Pin) (iocon.Pull, error) {
	d, err := c.Descriptor(p)
	if err != nil {
		return 0, err
	}
	return iocon.DecodePull(d), nil
}

// AF returns the alternate function selector of the given pin.
func (c *Controller) AF(p *pins.Pin) (uint8, error) {
	d, err := c.Descriptor(p)
	if err != nil {
		return 0, err
	}
	return iocon.DecodeAF(d), nil
}

// AFList returns the alternate functions supported by the given pin.
func (c *Controller) AFList(p *pins.Pin) []pins.AltFunc {
	return p.AFList()
}

// Names returns the cpu name of the given pin, followed by all its
// board names.
func (c *Controller) Names(p *pins.Pin) []string {
	return append([]string{p.Name()}, c.resolver.Board().Aliases(p)...)
}

// Render returns a human readable description of the current state
// of the given pin.
func (c *Controller) Render(p *pins.Pin) (string, error) {
	d, err := c.Descriptor(p)
	if err != nil {
		return "", err
	}
	return Describe(p, d), nil
}

// Value returns the logic level of the given pin.
func (c *Controller) Value(p *pins.Pin) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	v, err := c.bridge.ReadBit(p.Port(), p.Number())
	if err != nil {
		return false, maskAny(err)
	}
	return v, nil
}

// SetValue sets the output data bit of the given pin.
func (c *Controller) SetValue(p *pins.Pin, value bool) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	valueWriteCounters.WithLabelValues(p.Name()).Inc()
	if err := c.bridge.WriteBit(p.Port(), p.Number(), value); err != nil {
		return maskAny(err)
	}
	d, err := c.bridge.ReadMux(p.Port(), p.Number())
	if err != nil {
		return maskAny(err)
	}
	c.publish(p, iocon.Descriptor(d), value)
	return nil
}

// On drives the given pin high.
func (c *Controller) On(p *pins.Pin) error { return c.SetValue(p, true) }

// Off drives the given pin low.
func (c *Controller) Off(p *pins.Pin) error { return c.SetValue(p, false) }
