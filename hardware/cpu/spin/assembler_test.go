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

package spin_test

import (
	"testing"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/hardware/cpu/spin"
	"github.com/jetsetilly/idleloop/test"
)

func TestAssemble(t *testing.T) {
	src := `
		.equ mailbox, $8c
	wait:	ldw r0, mailbox	; wait for the mailbox to be cleared
		cmpi r0, 0
		bne wait
		addi r1, -1
		.org 0x620
	done:	bra done
		.word 0xdeadbeef
	`
	p, err := spin.Assemble(0x600, src)
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, p.Symbols["mailbox"], uint32(0x8c))
	test.ExpectEquality(t, p.Symbols["wait"], uint32(0x600))
	test.ExpectEquality(t, p.Symbols["done"], uint32(0x620))

	test.DemandEquality(t, len(p.Words), 10)
	test.ExpectEquality(t, spin.Decode(p.Words[0]).String(), "ldw r0, $008c")
	test.ExpectEquality(t, spin.Decode(p.Words[1]).String(), "cmpi r0, $0000")
	test.ExpectEquality(t, spin.Decode(p.Words[2]).String(), "bne $0600")
	test.ExpectEquality(t, spin.Decode(p.Words[3]).String(), "addi r1, $ffff")

	// padding
	test.ExpectEquality(t, p.Words[4], uint32(0))
	test.ExpectEquality(t, spin.Decode(p.Words[8]).String(), "bra $0620")
	test.ExpectEquality(t, p.Words[9], uint32(0xdeadbeef))
	test.ExpectEquality(t, p.Memtop(), uint32(0x627))

	b := p.Bytes()
	test.DemandEquality(t, len(b), 40)
	test.ExpectEquality(t, b[0], uint8(spin.LDW))
	test.ExpectEquality(t, b[3], uint8(0x8c))
}

func TestAssemblerErrors(t *testing.T) {
	for _, src := range []string{
		"foo r0, 1",
		"ldw r8, 0x10",
		"ldw r0",
		"movi r0, 0x10000",
		"bra nowhere",
		"l: nop\nl: nop",
		"1l: nop",
		".org 0x10",
		"nop\n.org 0x601",
		".equ x",
		".word",
	} {
		_, err := spin.Assemble(0x600, src)
		test.ExpectSuccess(t, curated.Is(err, spin.AssemblerError), src)
	}

	test.ExpectPanic(t, func() { spin.MustAssemble(0, "foo") })
}

func TestInstructionString(t *testing.T) {
	test.ExpectEquality(t, spin.Instruction{Opcode: spin.NOP}.String(), "nop")
	test.ExpectEquality(t, spin.Instruction{Opcode: spin.OUT, Reg: 3}.String(), "out r3")
	test.ExpectEquality(t, spin.Instruction{Opcode: spin.INT, Operand: 1}.String(), "int $0001")
	test.ExpectEquality(t, spin.Instruction{Opcode: 0xff}.String(), "illegal opcode (0xff)")

	ins := spin.Instruction{Opcode: spin.STL, Reg: 7, Operand: 0x1234}
	test.ExpectEquality(t, spin.Decode(ins.Encode()), ins)
}
