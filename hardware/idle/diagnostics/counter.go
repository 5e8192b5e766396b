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

package diagnostics

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
)

const listenerLabel = "diagnostics"

// Counter records the number of times each event is fired for each core.
type Counter struct {
	reg     *poll.Registry
	handles []poll.Handle
	counts  [events.MaxCores][events.NumSysEvents]int

	// events with a value outside the known range
	unknown [events.MaxCores]int
}

// NewCounter is the preferred method of initialisation for the Counter type.
// The Counter is attached to the registry immediately.
func NewCounter(reg *poll.Registry) *Counter {
	c := &Counter{reg: reg}
	c.Attach()
	return c
}

func (c *Counter) listen(core events.CoreID, ev events.SysEvent) {
	if int(ev) < 0 || int(ev) >= events.NumSysEvents {
		c.unknown[core]++
		return
	}
	c.counts[core][ev]++
}

// Attach the counter to the registry. Should be called after the registry has
// been reset. Does nothing if the counter is already attached.
func (c *Counter) Attach() {
	if c.Attached() {
		return
	}
	c.handles = c.reg.AddListenerAll(listenerLabel, c.listen)
}

// Attached returns true if the counter's listeners are registered.
func (c *Counter) Attached() bool {
	if len(c.handles) == 0 {
		return false
	}
	for _, l := range c.reg.Labels(events.Master) {
		if l == listenerLabel {
			return true
		}
	}
	return false
}

// Detach removes the counter's listeners from the registry. Counts are
// preserved.
func (c *Counter) Detach() {
	for _, h := range c.handles {
		c.reg.RemoveListener(h)
	}
	c.handles = c.handles[:0]
}

// Count returns the number of times the event has been fired for the core.
func (c *Counter) Count(core events.CoreID, ev events.SysEvent) int {
	if int(ev) < 0 || int(ev) >= events.NumSysEvents {
		return c.unknown[core]
	}
	return c.counts[core][ev]
}

// Total returns the number of events of any kind fired for the core.
func (c *Counter) Total(core events.CoreID) int {
	t := c.unknown[core]
	for _, n := range c.counts[core] {
		t += n
	}
	return t
}

// Clear all counts.
func (c *Counter) Clear() {
	c.counts = [events.MaxCores][events.NumSysEvents]int{}
	c.unknown = [events.MaxCores]int{}
}

// String returns a table of the non-zero counts.
func (c *Counter) String() string {
	s := strings.Builder{}
	for _, core := range events.Cores(c.reg.NumCores()) {
		s.WriteString(fmt.Sprintf("%s:", core))
		n := 0
		for ev, v := range c.counts[core] {
			if v == 0 {
				continue
			}
			s.WriteString(fmt.Sprintf(" %s=%d", events.SysEvent(ev), v))
			n++
		}
		if c.unknown[core] > 0 {
			s.WriteString(fmt.Sprintf(" unknown=%d", c.unknown[core]))
			n++
		}
		if n == 0 {
			s.WriteString(" none")
		}
		s.WriteString("\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}
