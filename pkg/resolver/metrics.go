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
	"github.com/binkynet/PinMux/pkg/metrics"
)

const (
	subSystem = "resolver"
)

var (
	// Total number of successful resolutions per strategy
	resolveCounters = metrics.MustRegisterCounterVec(subSystem,
		"resolve_total",
		"Total number of successful resolutions per strategy",
		"strategy")
	// Total number of failed resolutions per reason
	resolveErrorCounters = metrics.MustRegisterCounterVec(subSystem,
		"resolve_error_total",
		"Total number of failed resolutions per reason",
		"reason")
)
