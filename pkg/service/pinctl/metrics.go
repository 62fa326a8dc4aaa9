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
	"github.com/binkynet/PinMux/pkg/metrics"
)

const (
	subSystem = "pinctl"
)

var (
	// Total number of Apply calls
	applyCounters = metrics.MustRegisterCounter(subSystem,
		"apply_total",
		"Total number of Apply calls")
	// Total number of failed Apply calls per kind of failure
	applyErrorCounters = metrics.MustRegisterCounterVec(subSystem,
		"apply_error_total",
		"Total number of failed Apply calls per kind",
		"kind")
	// Total number of output value writes per pin
	valueWriteCounters = metrics.MustRegisterCounterVec(subSystem,
		"value_write_total",
		"Total number of output value writes per pin",
		"pin")
)
