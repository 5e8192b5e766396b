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

import "fmt"

// Opcode is the most significant byte of an instruction.
type Opcode uint8

// List of valid opcodes.
const (
	NOP Opcode = iota
	MOVI
	LDB
	LDW
	LDL
	STB
	STW
	STL
	CMPI
	BEQ
	BNE
	BRA
	ADDI
	COPY
	OUT
	INT
	RTI
)

// OperandShape describes which fields of an instruction are used.
type OperandShape int

// List of valid OperandShape values.
const (
	// no register and no operand
	Implied OperandShape = iota

	// register and 16bit immediate value
	RegImm

	// register and 16bit address
	RegAddr

	// 16bit address only
	Addr

	// register only
	Reg

	// 16bit immediate value only
	Imm
)

// EffectCategory categorises an instruction by the effect it has.
type EffectCategory int

// List of effect categories.
const (
	Control EffectCategory = iota
	Move
	Load
	Store
	Compare

	// conditional branches
	Branch

	// unconditional branch
	Jump

	// block memory transfer
	Transfer

	// effects outside of the emulated memory
	External

	Return
)

// Definition defines each instruction in the instruction set.
type Definition struct {
	Opcode   Opcode
	Mnemonic string
	Cycles   int
	Shape    OperandShape
	Effect   EffectCategory
}

func (defn Definition) String() string {
	return fmt.Sprintf("%02x %s (%d cycles)", uint8(defn.Opcode), defn.Mnemonic, defn.Cycles)
}

// Definitions of every instruction, indexed by opcode.
var Definitions = []Definition{
	{Opcode: NOP, Mnemonic: "nop", Cycles: 1, Shape: Implied, Effect: Control},
	{Opcode: MOVI, Mnemonic: "movi", Cycles: 1, Shape: RegImm, Effect: Move},
	{Opcode: LDB, Mnemonic: "ldb", Cycles: 2, Shape: RegAddr, Effect: Load},
	{Opcode: LDW, Mnemonic: "ldw", Cycles: 2, Shape: RegAddr, Effect: Load},
	{Opcode: LDL, Mnemonic: "ldl", Cycles: 3, Shape: RegAddr, Effect: Load},
	{Opcode: STB, Mnemonic: "stb", Cycles: 2, Shape: RegAddr, Effect: Store},
	{Opcode: STW, Mnemonic: "stw", Cycles: 2, Shape: RegAddr, Effect: Store},
	{Opcode: STL, Mnemonic: "stl", Cycles: 3, Shape: RegAddr, Effect: Store},
	{Opcode: CMPI, Mnemonic: "cmpi", Cycles: 1, Shape: RegImm, Effect: Compare},
	{Opcode: BEQ, Mnemonic: "beq", Cycles: 2, Shape: Addr, Effect: Branch},
	{Opcode: BNE, Mnemonic: "bne", Cycles: 2, Shape: Addr, Effect: Branch},
	{Opcode: BRA, Mnemonic: "bra", Cycles: 2, Shape: Addr, Effect: Jump},
	{Opcode: ADDI, Mnemonic: "addi", Cycles: 1, Shape: RegImm, Effect: Move},
	{Opcode: COPY, Mnemonic: "copy", Cycles: 16, Shape: RegAddr, Effect: Transfer},
	{Opcode: OUT, Mnemonic: "out", Cycles: 4, Shape: Reg, Effect: External},
	{Opcode: INT, Mnemonic: "int", Cycles: 2, Shape: Imm, Effect: External},
	{Opcode: RTI, Mnemonic: "rti", Cycles: 3, Shape: Implied, Effect: Return},
}

// Lookup returns the definition for the opcode.
func Lookup(op Opcode) (Definition, bool) {
	if int(op) >= len(Definitions) {
		return Definition{}, false
	}
	return Definitions[op], true
}

// LookupMnemonic returns the definition with the mnemonic. The mnemonic must
// be lower case.
func LookupMnemonic(mnemonic string) (Definition, bool) {
	for _, d := range Definitions {
		if d.Mnemonic == mnemonic {
			return d, true
		}
	}
	return Definition{}, false
}

// NumRegisters is the number of general purpose registers.
const NumRegisters = 8

// InstructionSize is the number of bytes in every instruction.
const InstructionSize = 4

// InterruptCycles is the number of additional cycles taken when an interrupt
// is serviced.
const InterruptCycles = 4

// CopyLength is the number of bytes transferred by the COPY instruction.
const CopyLength = 16
