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
	"fmt"

	"github.com/jetsetilly/idleloop/hardware/idle/poll"
)

// Instruction is a decoded instruction word.
type Instruction struct {
	Opcode  Opcode
	Reg     int
	Operand uint16
}

// Decode an instruction word.
func Decode(w uint32) Instruction {
	return Instruction{
		Opcode:  Opcode(w >> 24),
		Reg:     int(w>>16) & 0xff,
		Operand: uint16(w),
	}
}

// Encode the instruction as a word.
func (ins Instruction) Encode() uint32 {
	return uint32(ins.Opcode)<<24 | uint32(ins.Reg&0xff)<<16 | uint32(ins.Operand)
}

// Definition returns the definition of the instruction's opcode.
func (ins Instruction) Definition() (Definition, bool) {
	return Lookup(ins.Opcode)
}

// Size of memory access for load and store instructions. The bool return is
// false for all other instructions.
func (ins Instruction) Size() (poll.Size, bool) {
	switch ins.Opcode {
	case LDB, STB:
		return poll.Byte, true
	case LDW, STW:
		return poll.Word, true
	case LDL, STL:
		return poll.Long, true
	}
	return 0, false
}

func (ins Instruction) String() string {
	defn, ok := ins.Definition()
	if !ok {
		return fmt.Sprintf("illegal opcode (%#02x)", uint8(ins.Opcode))
	}
	switch defn.Shape {
	case RegImm, RegAddr:
		return fmt.Sprintf("%s r%d, $%04x", defn.Mnemonic, ins.Reg, ins.Operand)
	case Addr, Imm:
		return fmt.Sprintf("%s $%04x", defn.Mnemonic, ins.Operand)
	case Reg:
		return fmt.Sprintf("%s r%d", defn.Mnemonic, ins.Reg)
	}
	return defn.Mnemonic
}
