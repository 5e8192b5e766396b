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

// Package scenario runs Lua scripts that act as external agents on a
// hardware.Machine. A script can write to shared memory, raise interrupts,
// reset cores and run the machine for a number of cycles, checking the state
// of the fast-forward scheduler as it goes.
//
// The following functions are available to scripts:
//
//	load(core, origin, source)	assemble and load a program for the core
//	vector(core, addr)		set the interrupt vector of the core
//	write(addr, size, value)	write to memory, notifying polling cores
//	poke(addr, size, value)		write to memory without notification
//	read(addr, size)		read from memory
//	dma(dst, src, n)		block transfer of n bytes
//	interrupt(core)			raise an interrupt for the core
//	reset(core)			pulse the reset line of the core
//	hold(core)			hold the core in reset
//	release(core)			release the core from reset
//	run(cycles)			run the machine
//	state(core)			fast-forward state of the core as a string
//	stats(core)			table of fast-forward statistics for the core
//	count(core, event)		number of times the named event was fired
//	expect(cond, message)		fail the script if cond is false
//	log(message)			write message to the log
//
// Cores are numbered from zero. The globals MASTER and SLAVE are defined for
// convenience.
package scenario
