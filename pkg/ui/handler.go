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
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"

	"github.com/binkynet/PinMux/pkg/service/pinctl"
)

const (
	sessionQueueSize = 16
)

// UI creates a model per SSH session and forwards pin changes to
// all open sessions.
type UI struct {
	ctl *pinctl.Controller

	mutex    sync.Mutex
	sessions map[chan pinctl.PinChanged]struct{}
}

// New creates the UI.
func New(ctl *pinctl.Controller) *UI {
	u := &UI{
		ctl:      ctl,
		sessions: make(map[chan pinctl.PinChanged]struct{}),
	}
	ctl.Subscribe(u.onPinChanged)
	return u
}

// Handler creates the model for the given session.
func (u *UI) Handler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := s.Pty()
	events := u.join()
	go func() {
		<-s.Context().Done()
		u.leave(events)
	}()
	return NewRoot(u.ctl, pty.Term, events), []tea.ProgramOption{tea.WithAltScreen()}
}

func (u *UI) join() chan pinctl.PinChanged {
	events := make(chan pinctl.PinChanged, sessionQueueSize)
	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.sessions[events] = struct{}{}
	return events
}

func (u *UI) leave(events chan pinctl.PinChanged) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	delete(u.sessions, events)
	close(events)
}

func (u *UI) onPinChanged(e pinctl.PinChanged) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	for events := range u.sessions {
		select {
		case events <- e:
		default:
			// Slow session, the next tick will catch up.
		}
	}
}
