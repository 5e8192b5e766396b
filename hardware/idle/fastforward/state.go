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

package fastforward

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/idleloop/hardware/idle/events"
)

// State of a core in the Scheduler.
type State int

// List of valid State values.
const (
	Normal State = iota
	LoopDetected
	Polling
	BusyLoop
)

func (s State) String() string {
	switch s {
	case Normal:
		return "NORMAL"
	case LoopDetected:
		return "LOOP_DETECTED"
	case Polling:
		return "POLLING"
	case BusyLoop:
		return "BUSY_LOOP"
	}
	return fmt.Sprintf("unknown state (%d)", int(s))
}

// ParseState is the inverse of State.String(). The comparison is case
// insensitive.
func ParseState(s string) (State, bool) {
	for st := Normal; st <= BusyLoop; st++ {
		if strings.EqualFold(st.String(), s) {
			return st, true
		}
	}
	return Normal, false
}

// Stats are collected for every attached core.
type Stats struct {
	// instructions executed and the cycles they consumed
	Retired        uint64
	ExecutedCycles uint64

	// cycles advanced without executing instructions
	SkippedCycles uint64

	// loop confirmations
	Polls     int
	BusyLoops int
	NonBusy   int

	// reasons for returning to Normal
	FallbackValue     int
	FallbackInterrupt int
	FallbackEvent     [events.NumSysEvents]int

	ThrottleCharges int
}

// Fallbacks returns the total number of times the core returned to Normal
// from Polling or BusyLoop.
func (s Stats) Fallbacks() int {
	n := s.FallbackValue + s.FallbackInterrupt
	for _, e := range s.FallbackEvent {
		n += e
	}
	return n
}

func (s Stats) String() string {
	return fmt.Sprintf("retired=%d executed=%d skipped=%d polls=%d busy=%d nonbusy=%d fallbacks=%d",
		s.Retired, s.ExecutedCycles, s.SkippedCycles, s.Polls, s.BusyLoops, s.NonBusy, s.Fallbacks())
}
