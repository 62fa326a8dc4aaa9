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
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/binkynet/PinMux/pkg/iocon"
	"github.com/binkynet/PinMux/pkg/resolver"
)

// statusCode returns the HTTP status for the given error.
func statusCode(err error) int {
	switch {
	case iocon.IsInvalidMode(err), iocon.IsInvalidPull(err), iocon.IsInvalidAlternateFunction(err):
		return http.StatusBadRequest
	case resolver.IsInvalidIdentifier(err):
		return http.StatusNotFound
	case resolver.IsMapperContractViolation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler reports errors as JSON.
func (s *Server) errorHandler(err error, c echo.Context) {
	code := statusCode(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	} else {
		s.log.Debug().Err(err).Str("path", c.Path()).Msg("Request rejected")
	}
	if c.Response().Committed {
		return
	}
	c.JSON(code, map[string]string{"error": msg})
}
