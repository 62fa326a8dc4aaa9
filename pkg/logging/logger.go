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
// Package logging creates the loggers of the service and the extra
// outputs they can write to.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// NewLogger creates a logger with the given level that writes
// human readable lines to the given console, and JSON lines to the
// given extra outputs.
func NewLogger(level string, console io.Writer, outputs ...io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, errors.Wrapf(err, "invalid log level '%s'", level)
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: console}
	if len(outputs) > 0 {
		w = NewMultiWriter(append([]io.Writer{w}, outputs...)...)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
