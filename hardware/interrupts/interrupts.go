// This file is part of Idleloop.
//
// Idleloop is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Idleloop is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Idleloop.  If not, see <https://www.gnu.org/licenses/>.

// Package interrupts implements the pending-interrupt line of every core.
//
// Raising an interrupt fires the Interrupt event for the core before Raise()
// returns, so a core that is polling or in a busy loop is returned to normal
// execution before the raising core continues.
package interrupts

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
)

// Controller records the pending interrupts of every core.
type Controller struct {
	reg     *poll.Registry
	pending uint32

	// number of times each core has acknowledged an interrupt
	taken [events.MaxCores]int
}

// NewController is the preferred method of initialisation for the Controller
// type.
func NewController(reg *poll.Registry) *Controller {
	return &Controller{reg: reg}
}

func (ctl *Controller) String() string {
	s := strings.Builder{}
	for _, c := range events.Cores(ctl.reg.NumCores()) {
		if s.Len() > 0 {
			s.WriteString(" ")
		}
		if ctl.pending&c.Bit() != 0 {
			s.WriteString(fmt.Sprintf("%s=pending", c))
		} else {
			s.WriteString(fmt.Sprintf("%s=clear", c))
		}
	}
	return s.String()
}

// NumCores returns the number of cores served by the controller.
func (ctl *Controller) NumCores() int {
	return ctl.reg.NumCores()
}

// Raise asserts the interrupt line of the core. The Interrupt event is fired
// only if the interrupt was not already pending.
func (ctl *Controller) Raise(core events.CoreID) {
	if !core.Valid(ctl.reg.NumCores()) {
		panic(fmt.Sprintf("interrupts: raise: invalid core (%d)", core))
	}
	if ctl.pending&core.Bit() != 0 {
		return
	}
	ctl.pending |= core.Bit()
	ctl.reg.FireSysEvent(core, events.Interrupt)
}

// Pending returns true if the core has an interrupt pending.
func (ctl *Controller) Pending(core events.CoreID) bool {
	return ctl.pending&core.Bit() != 0
}

// Acknowledge clears the pending interrupt of the core. Returns false if no
// interrupt was pending.
func (ctl *Controller) Acknowledge(core events.CoreID) bool {
	if ctl.pending&core.Bit() == 0 {
		return false
	}
	ctl.pending &^= core.Bit()
	ctl.taken[core]++
	return true
}

// Taken returns the number of interrupts acknowledged by the core.
func (ctl *Controller) Taken(core events.CoreID) int {
	return ctl.taken[core]
}

// Reset clears all pending interrupts.
func (ctl *Controller) Reset() {
	ctl.pending = 0
	ctl.taken = [events.MaxCores]int{}
}
