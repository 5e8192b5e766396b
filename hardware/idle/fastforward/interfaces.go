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
	"time"

	"github.com/jetsetilly/idleloop/hardware/idle/loops"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
)

// Retired describes an instruction that has been executed by a Core.
type Retired struct {
	Addr   uint32
	Opcode uint32
	Cycles int
}

// Core is the interface to the CPU back-end of a single core.
type Core interface {
	// execute a single instruction
	Step() (Retired, error)

	// advance the cycle counter of the core without executing anything
	AdvanceVirtualCycles(n int)

	// PollTarget is called when a busy loop has been confirmed. The window
	// contains the instructions that confirmed the loop. A loop with
	// poll.NoTarget is treated as a busy loop that only an interrupt can end.
	// A poll.Unresolved loop reads memory that a write could change so it
	// is never skipped.
	//
	// The Core and Active fields of the returned Context are ignored. The
	// Context is only meaningful with poll.Resolved.
	PollTarget(window []loops.Entry) (poll.Context, poll.Target)

	// returns true if an interrupt is pending that the core will take when it
	// next executes an instruction
	InterruptPending() bool

	// classification of opcodes for the loop detector
	LoopSafe(opcode uint32) bool
	Disqualify(opcode uint32) bool
}

// Horizon reports the number of cycles until the next scheduled system-wide
// event (timer, DMA, video timing). Skipping never advances a core beyond the
// horizon.
type Horizon interface {
	CyclesUntilNextEvent() int
}

// Throttle is charged with a host delay once for every confirmation of a loop
// that is not safe to skip.
type Throttle interface {
	Charge(time.Duration)
}

// NopThrottle is a Throttle that does nothing.
type NopThrottle struct{}

// Charge implements the Throttle interface.
func (NopThrottle) Charge(time.Duration) {}

// SleepThrottle is a Throttle that sleeps for the duration of the charge.
type SleepThrottle struct{}

// Charge implements the Throttle interface.
func (SleepThrottle) Charge(d time.Duration) {
	time.Sleep(d)
}
