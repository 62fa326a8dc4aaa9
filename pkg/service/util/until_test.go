// Copyright 2021 Ewout Prangsma
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

package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	done := make(chan error)
	go func() {
		done <- UntilCanceled(ctx, zerolog.Nop(), "test", time.Millisecond, func(context.Context) error {
			if atomic.AddInt32(&calls, 1) == 3 {
				cancel()
				return errors.New("third call fails")
			}
			return nil
		})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("UntilCanceled returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("UntilCanceled did not stop")
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d; want 3", n)
	}
}
