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

// Package spin is a minimal CPU used to drive the idle loop detection and
// fast-forward scheduling of the emulated machine. It is sufficient for
// writing the polling loops, busy loops and handshakes that real multi-core
// software uses to wait for other cores.
//
// Every instruction is four bytes long and stored big-endian. The most
// significant byte is the opcode, the next byte is the register and the
// lower sixteen bits are the operand:
//
//	ldw   r0, $008c
//	cmpi  r0, $0000
//	bne   $0600
//
// The CPU implements the fastforward.Core interface. The LoopSafe() and
// Disqualify() predicates classify opcodes by their EffectCategory and
// PollTarget() performs a static analysis of a loop's window to find the
// single memory location the loop is waiting on. A loop that loads from
// memory in any other way is unresolved and is never skipped.
package spin
