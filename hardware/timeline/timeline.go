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

// Package timeline schedules the periodic system events of the emulated
// machine. Timers, DMA engines and video controllers are all represented by
// an entry in the timeline with a period measured in cycles.
//
// The Timeline implements the fastforward.Horizon interface so that a core in
// the Polling state is never advanced past the next scheduled event.
package timeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/jetsetilly/idleloop/curated"
)

// Sentinal error patterns.
const (
	InvalidPeriod  = "timeline: %s: invalid period (%d)"
	DuplicateEvent = "timeline: duplicate event name (%s)"
)

// NoEvents is the value returned by CyclesUntilNextEvent() when nothing is
// scheduled.
const NoEvents = math.MaxInt32

type event struct {
	name      string
	period    int
	remaining int
	fn        func()
	count     int
}

// Timeline is a list of periodic events.
type Timeline struct {
	events  []*event
	elapsed uint64
}

// NewTimeline is the preferred method of initialisation for the Timeline type.
func NewTimeline() *Timeline {
	return &Timeline{}
}

func (tl *Timeline) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("elapsed=%d", tl.elapsed))
	for _, e := range tl.events {
		s.WriteString(fmt.Sprintf(" %s=%d/%d", e.name, e.remaining, e.period))
	}
	return s.String()
}

// Schedule a function to be called every period cycles. Functions are called
// in the order they were scheduled when more than one is due on the same
// cycle.
func (tl *Timeline) Schedule(name string, period int, fn func()) error {
	if period < 1 {
		return curated.Errorf(InvalidPeriod, name, period)
	}
	for _, e := range tl.events {
		if e.name == name {
			return curated.Errorf(DuplicateEvent, name)
		}
	}
	tl.events = append(tl.events, &event{
		name:      name,
		period:    period,
		remaining: period,
		fn:        fn,
	})
	return nil
}

// Cancel removes the named event. Returns false if there was no such event.
func (tl *Timeline) Cancel(name string) bool {
	for i, e := range tl.events {
		if e.name == name {
			tl.events = append(tl.events[:i], tl.events[i+1:]...)
			return true
		}
	}
	return false
}

// CyclesUntilNextEvent returns the number of cycles before the next event is
// due. Implements the fastforward.Horizon interface.
func (tl *Timeline) CyclesUntilNextEvent() int {
	n := NoEvents
	for _, e := range tl.events {
		if e.remaining < n {
			n = e.remaining
		}
	}
	return n
}

// Advance the timeline by n cycles, calling the function of every event that
// falls due.
func (tl *Timeline) Advance(n int) {
	for n > 0 {
		step := tl.CyclesUntilNextEvent()
		if step > n {
			step = n
		}
		n -= step
		tl.elapsed += uint64(step)

		for _, e := range tl.events {
			e.remaining -= step
		}

		// event functions may cancel events so iterate over a copy
		due := make([]*event, 0, len(tl.events))
		for _, e := range tl.events {
			if e.remaining <= 0 {
				e.remaining = e.period
				e.count++
				due = append(due, e)
			}
		}
		for _, e := range due {
			if e.fn != nil {
				e.fn()
			}
		}
	}
}

// Count returns the number of times the named event has fallen due.
func (tl *Timeline) Count(name string) int {
	for _, e := range tl.events {
		if e.name == name {
			return e.count
		}
	}
	return 0
}

// Elapsed returns the number of cycles the timeline has been advanced by.
func (tl *Timeline) Elapsed() uint64 {
	return tl.elapsed
}

// Reset restarts every event from the beginning of its period.
func (tl *Timeline) Reset() {
	tl.elapsed = 0
	for _, e := range tl.events {
		e.remaining = e.period
		e.count = 0
	}
}
