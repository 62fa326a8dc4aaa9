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
	"github.com/pkg/errors"

	"github.com/binkynet/PinMux/pkg/iocon"
	"github.com/binkynet/PinMux/pkg/resolver"
)

var (
	maskAny = errors.WithStack
)

// errorKind classifies the given error for metrics.
func errorKind(err error) string {
	switch {
	case iocon.IsInvalidMode(err):
		return "mode"
	case iocon.IsInvalidPull(err):
		return "pull"
	case iocon.IsInvalidAlternateFunction(err):
		return "af"
	case resolver.IsInvalidIdentifier(err), resolver.IsMapperContractViolation(err):
		return "resolve"
	default:
		return "bridge"
	}
}
