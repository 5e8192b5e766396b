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

// Package hardware is the base package for the emulated multi-core machine.
// The Machine type ties together the shared memory, the interrupt controller,
// the timeline of system events and one spin.CPU for every core.
//
// Cores are run cooperatively. Each core is given a slice of cycles in turn by
// the fast-forward Scheduler, which decides whether the core executes
// instructions or has its cycle counter advanced because it is waiting in an
// idle loop. Slices are never longer than the time until the next event on
// the timeline, so that system events are always serviced on time.
//
// Sub-packages contain the implementation details of each component.
package hardware
