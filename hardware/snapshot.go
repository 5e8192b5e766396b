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

package hardware

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/fastforward"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
)

// CoreSnapshot is a copy of the state of a single core.
type CoreSnapshot struct {
	ID     events.CoreID
	PC     uint32
	Cycles uint64
	Held   bool
	State  fastforward.State
	Stats  fastforward.Stats

	// nil if the core has no active poll
	Poller *poll.Context
}

func (s CoreSnapshot) String() string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("%s: PC=$%04x cycles=%d %s", s.ID, s.PC, s.Cycles, s.State))
	if s.Held {
		b.WriteString(" [held]")
	}
	if s.Poller != nil {
		b.WriteString(fmt.Sprintf(" (%s)", s.Poller))
	}
	return b.String()
}

// Snapshot is a copy of the state of the machine. It is not possible to plumb
// a snapshot back into a machine.
type Snapshot struct {
	Cycles uint64
	Cores  []CoreSnapshot
}

func (s Snapshot) String() string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("machine cycles=%d", s.Cycles))
	for _, c := range s.Cores {
		b.WriteString("\n")
		b.WriteString(c.String())
	}
	return b.String()
}

// Snapshot the state of the machine.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{Cycles: m.Cycles}
	for _, id := range events.Cores(m.cfg.NumCores) {
		cpu := m.CPUs[id]
		c := CoreSnapshot{
			ID:     id,
			PC:     cpu.PC,
			Cycles: cpu.Cycles,
			Held:   m.Held(id),
			State:  m.Scheduler.State(id),
			Stats:  m.Scheduler.Stats(id),
		}
		if m.Registry.PollerActive(id) {
			p := m.Registry.Poller(id)
			c.Poller = &p
		}
		s.Cores = append(s.Cores, c)
	}
	return s
}
