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

// Package loops classifies whether a core is executing a tight repeating loop
// and whether that loop is safe to skip.
//
// The Detector is a pattern classifier over the stream of retired
// (address, opcode) pairs of a single core. It has no knowledge of memory
// contents or interrupts.
//
// Retired instructions are recorded in one of two generations of a fixed
// number of entries. When a generation is full it is compared with the
// previous generation and the roles of the generations are swapped. The cost
// of comparison is therefore paid once per generation rather than once per
// instruction.
//
// A loop is confirmed when the comparison has succeeded a number of times in
// succession (the hysteresis). On confirmation an Enter signal is emitted. The
// signal is busy if every distinct opcode in the window is loop-safe and none
// is disqualified. Once a loop is confirmed, the first comparison that fails
// emits an Exit signal.
//
// Loops whose length does not divide the window size are never confirmed. The
// default window of twelve entries covers loops of one, two, three, four, six
// and twelve instructions.
//
// Confirmed loops are recorded in the KnownLoops table. If the addresses in a
// generation all belong to the same known loop then a single successful
// comparison is enough to confirm the loop again.
package loops
