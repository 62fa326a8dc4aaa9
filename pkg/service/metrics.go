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
	"github.com/binkynet/PinMux/pkg/metrics"
)

const (
	subSystem = "service"
)

var (
	// Total number of applied startup configurations
	initialPinsTotal = metrics.MustRegisterCounter(subSystem,
		"initial_pins_total",
		"Total number of applied startup configurations")
	// Total number of failed startup configurations
	initialPinErrorsTotal = metrics.MustRegisterCounter(subSystem,
		"initial_pin_errors_total",
		"Total number of failed startup configurations")
	// Last sampled level per pin
	pinLevelGauges = metrics.MustRegisterGaugeVec(subSystem,
		"pin_level",
		"Last sampled level per pin (0 or 1)",
		"pin")
)
