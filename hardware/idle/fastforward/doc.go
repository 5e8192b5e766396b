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

// Package fastforward decides when a core can skip emulated cycles without
// executing instructions, when the ground truth must be checked again, and
// when the core must return to normal instruction-by-instruction execution.
//
// Each core attached to the Scheduler is in one of four states:
//
//	Normal        instructions are executed one at a time and fed to the
//	              loop detector
//	LoopDetected  a busy loop has been confirmed and the CPU is asked for
//	              the loop's memory target
//	Polling       the loop has a memory target. cycles are skipped until the
//	              value at the target no longer satisfies the loop's wait
//	              condition or an invalidating event is fired for the core
//	BusyLoop      the loop reads no memory. cycles are skipped until an
//	              interrupt is pending or an invalidating event is fired
//
// A confirmed loop that reads memory but has no single memory target is
// never skipped. The core stays in Normal, as it does for a loop that is not
// busy.
//
// The Scheduler registers a listener with the poll Registry for every
// attached core. The listener returns the core to Normal, and resets the
// core's poll, for any event that invalidates the core's kind of poll (see
// events.Invalidates()).
//
// When a core leaves Polling or BusyLoop, execution continues from the
// instruction that follows the last instruction retired before the loop was
// confirmed. Because the confirming window ends on a complete iteration of the
// loop the core re-reads the polled location before it can act on it.
//
// Skipping is pure bookkeeping. The CPU's virtual cycle counter is advanced
// and nothing else happens. The optional throttle for loops that are not safe
// to skip is a host performance control and never affects the emulated cycle
// count.
package fastforward
