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

package events

// PollKind distinguishes a poll on a memory target from a busy loop that has
// no memory target.
type PollKind int

// List of valid PollKind values.
const (
	MemoryPoll PollKind = iota
	BusyLoop
)

func (k PollKind) String() string {
	switch k {
	case MemoryPoll:
		return "memory poll"
	case BusyLoop:
		return "busy loop"
	}
	return "unknown poll kind"
}

// kinds invalidated by an event, as a bitmask of PollKind.
type kinds uint8

const (
	memoryPollOnly kinds = 1 << MemoryPoll
	allKinds       kinds = 1<<MemoryPoll | 1<<BusyLoop
)

// invalidation is the policy table of which events invalidate which poll
// kinds. a busy loop has no memory target so only events that can change
// control flow of the core end it.
var invalidation = [NumSysEvents]kinds{
	None:            0,
	Interrupt:       allKinds,
	GenericSystem:   allKinds,
	SharedMemory:    memoryPollOnly,
	FrameBuffer:     memoryPollOnly,
	CommPort:        memoryPollOnly,
	DMA:             memoryPollOnly,
	AudioTimer:      memoryPollOnly,
	VideoController: memoryPollOnly,
	StartPolling:    0,
	CoreResetOn:     allKinds,
	CoreResetOff:    allKinds,
}

// Invalidates returns true if the event invalidates a poll of the specified
// kind. Events not in the table invalidate every kind of poll.
func Invalidates(ev SysEvent, kind PollKind) bool {
	if ev < 0 || int(ev) >= NumSysEvents {
		return true
	}
	return invalidation[ev]&(1<<kind) != 0
}
