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
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/binkynet/PinMux/pkg/service/pinctl"
)

const (
	refreshInterval = time.Second * 2
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	nameStyle  = lipgloss.NewStyle().Width(28)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type Root struct {
	ctl       *pinctl.Controller
	events    <-chan pinctl.PinChanged
	term      string
	width     int
	height    int
	lines     []string
	changes   int
	lastEvent string
	updatedAt time.Time
	viewPort  viewport.Model
	ready     bool
}

var _ tea.Model = Root{}

// NewRoot creates the model for a single session.
// Changes published on the given channel trigger a refresh.
func NewRoot(ctl *pinctl.Controller, term string, events <-chan pinctl.PinChanged) Root {
	return Root{
		ctl:    ctl,
		term:   term,
		events: events,
	}
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (r Root) Init() tea.Cmd {
	return tea.Batch(doReload(r.ctl), r.waitForChange(), doTick())
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (r Root) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case reloadMsg:
		r.lines = msg.lines
		r.updatedAt = msg.at
		r.setContent()
	case tickMsg:
		cmds = append(cmds, doReload(r.ctl), doTick())
	case pinChangedMsg:
		r.changes++
		r.lastEvent = msg.Pin.Name()
		cmds = append(cmds, doReload(r.ctl), r.waitForChange())
	case tea.WindowSizeMsg:
		r.height = msg.Height
		r.width = msg.Width
		headerHeight := lipgloss.Height(r.headerView())
		footerHeight := lipgloss.Height(r.footerView())
		if !r.ready {
			r.viewPort = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			r.viewPort.YPosition = headerHeight
			r.ready = true
		} else {
			r.viewPort.Width = msg.Width
			r.viewPort.Height = msg.Height - headerHeight - footerHeight
		}
		r.setContent()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return r, tea.Quit
		case "r":
			cmds = append(cmds, doReload(r.ctl))
		}
	}

	// Handle keyboard and mouse events in the viewport
	if r.ready {
		var cmd tea.Cmd
		r.viewPort, cmd = r.viewPort.Update(msg)
		cmds = append(cmds, cmd)
	}

	return r, tea.Batch(cmds...)
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (r Root) View() string {
	if !r.ready {
		return r.headerView() + strings.Join(r.lines, "\n") + "\n" + r.footerView()
	}
	return r.headerView() + r.viewPort.View() + "\n" + r.footerView()
}

func (r Root) headerView() string {
	updated := "never"
	if !r.updatedAt.IsZero() {
		updated = humanize.Time(r.updatedAt)
	}
	info := fmt.Sprintf(" %d pins, updated %s", len(r.lines), updated)
	if r.changes > 0 {
		info += fmt.Sprintf(", %s changes (last %s)", humanize.Comma(int64(r.changes)), r.lastEvent)
	}
	return lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("BinkyNet pin multiplexer"),
		info,
	) + "\n"
}

func (r Root) footerView() string {
	return helpStyle.Render("r - Reload, q - Disconnect")
}

func (r *Root) setContent() {
	if r.ready {
		r.viewPort.SetContent(strings.Join(r.lines, "\n"))
	}
}

type reloadMsg struct {
	lines []string
	at    time.Time
}

type tickMsg time.Time

type pinChangedMsg pinctl.PinChanged

// doReload renders all cpu pins with their names.
func doReload(ctl *pinctl.Controller) tea.Cmd {
	return func() tea.Msg {
		return reloadMsg{lines: Lines(ctl), at: time.Now()}
	}
}

func doTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (r Root) waitForChange() tea.Cmd {
	if r.events == nil {
		return nil
	}
	events := r.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return pinChangedMsg(e)
	}
}

// Lines renders one line per cpu pin, in registry order.
func Lines(ctl *pinctl.Controller) []string {
	var lines []string
	for _, p := range ctl.Resolver().CPU().Pins() {
		names := nameStyle.Render(strings.Join(ctl.Names(p), " "))
		s, err := ctl.Render(p)
		if err != nil {
			s = errorStyle.Render(err.Error())
		}
		lines = append(lines, names+s)
	}
	return lines
}
