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

import "fmt"

// SysEvent is a categorised notification that state visible to a polling core
// has changed.
type SysEvent int

// List of valid SysEvent values.
const (
	None SysEvent = iota

	// a new pending interrupt has been asserted for the core
	Interrupt

	// uncategorised system change
	GenericSystem

	// write to memory shared between cores
	SharedMemory

	// write to the frame buffer
	FrameBuffer

	// write to the communication ports between cores
	CommPort

	// transfer by a DMA engine
	DMA

	// audio timer has changed state
	AudioTimer

	// video controller registers have changed
	VideoController

	// the core has started polling. for diagnostics only
	StartPolling

	// the core has been put into reset
	CoreResetOn

	// the core has been taken out of reset
	CoreResetOff

	numSysEvents
)

// NumSysEvents is the number of SysEvent values. Useful for sizing arrays
// indexed by SysEvent.
const NumSysEvents = int(numSysEvents)

func (ev SysEvent) String() string {
	switch ev {
	case None:
		return "none"
	case Interrupt:
		return "interrupt"
	case GenericSystem:
		return "generic system"
	case SharedMemory:
		return "shared memory"
	case FrameBuffer:
		return "frame buffer"
	case CommPort:
		return "comm port"
	case DMA:
		return "dma"
	case AudioTimer:
		return "audio timer"
	case VideoController:
		return "video controller"
	case StartPolling:
		return "start polling"
	case CoreResetOn:
		return "core reset on"
	case CoreResetOff:
		return "core reset off"
	}
	return fmt.Sprintf("unknown sysevent (%d)", int(ev))
}
