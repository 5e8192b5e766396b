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

package spin

import (
	"github.com/jetsetilly/idleloop/hardware/idle/loops"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
)

// PollTarget implements the fastforward.Core interface.
//
// A loop has a poll target if, ignoring NOPs and unconditional branches, it
// consists of a single load from an absolute address, a single comparison of
// the loaded register with an immediate value and a single conditional
// branch. The match policy depends on whether the conditional branch stays in
// the loop or leaves it.
//
// A loop that loads from memory but does not have that shape is unresolved. A
// loop with no load at all has no target.
func (cpu *CPU) PollTarget(window []loops.Entry) (poll.Context, poll.Target) {
	inLoop := make(map[uint32]bool, len(window))
	for _, e := range window {
		inLoop[e.Addr] = true
	}

	var load, cmp, branch *Instruction
	var reads, irregular bool

	seen := make(map[uint32]bool, len(window))
	for _, e := range window {
		if seen[e.Addr] {
			continue
		}
		seen[e.Addr] = true

		ins := Decode(e.Opcode)
		defn, ok := ins.Definition()
		if !ok {
			// nothing is known about the instruction so it may read memory
			return poll.Context{}, poll.Unresolved
		}

		switch defn.Effect {
		case Control, Jump:
			continue
		case Load:
			reads = true
			if load != nil {
				irregular = true
			}
			load = &ins
		case Compare:
			if cmp != nil {
				irregular = true
			}
			cmp = &ins
		case Branch:
			if branch != nil {
				irregular = true
			}
			branch = &ins
		default:
			irregular = true
		}
	}

	if !reads {
		return poll.Context{}, poll.NoTarget
	}

	if irregular || cmp == nil || branch == nil || load.Reg != cmp.Reg {
		return poll.Context{}, poll.Unresolved
	}

	sz, _ := load.Size()

	// the loop waits while the branch condition is true if the branch stays
	// in the loop. it waits while the condition is false if the branch
	// leaves the loop
	waitOnEqual := branch.Opcode == BEQ
	if !inLoop[uint32(branch.Operand)] {
		waitOnEqual = !waitOnEqual
	}

	kind := poll.WhileNotEqual
	if waitOnEqual {
		kind = poll.WhileEqual
	}

	return poll.Context{
		Addr: uint32(load.Operand),
		Size: sz,
		Match: poll.MatchPolicy{
			Kind:  kind,
			Value: uint32(cmp.Operand),
		},
	}, poll.Resolved
}
