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
	"strings"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/fastforward"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
	"github.com/jetsetilly/idleloop/hardware/interrupts"
	"github.com/jetsetilly/idleloop/hardware/memory/shared"
)

// Sentinal error patterns.
const (
	IllegalOpcode  = "spin: %s: illegal opcode (%#02x) at $%04x"
	ExecutionError = "spin: %s: %v"
)

var _ fastforward.Core = (*CPU)(nil)

// CPU is a single core.
type CPU struct {
	id   events.CoreID
	mem  *shared.Memory
	intc *interrupts.Controller

	// address of first instruction after a reset
	ResetVector uint32

	// address of the interrupt handler. interrupts are ignored if the
	// vector is not enabled
	Vector        uint32
	VectorEnabled bool

	PC   uint32
	Regs [NumRegisters]uint32
	Zero bool

	// the CPU is servicing an interrupt and will not take another until
	// the RTI instruction
	InInterrupt bool
	savedPC     uint32
	savedZero   bool

	// number of cycles the CPU has been running for. includes cycles
	// advanced while fast-forwarding
	Cycles uint64

	// values output with the OUT instruction
	Output []uint32
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU(id events.CoreID, mem *shared.Memory, intc *interrupts.Controller) *CPU {
	return &CPU{
		id:   id,
		mem:  mem,
		intc: intc,
	}
}

func (cpu *CPU) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s PC=$%04x", cpu.id, cpu.PC))
	for i, r := range cpu.Regs {
		s.WriteString(fmt.Sprintf(" r%d=%#x", i, r))
	}
	if cpu.Zero {
		s.WriteString(" Z")
	} else {
		s.WriteString(" z")
	}
	if cpu.InInterrupt {
		s.WriteString(" [int]")
	}
	return s.String()
}

// ID returns the core ID of the CPU.
func (cpu *CPU) ID() events.CoreID {
	return cpu.id
}

// Reset the CPU. The program counter is set to the reset vector.
func (cpu *CPU) Reset() {
	cpu.PC = cpu.ResetVector
	cpu.Regs = [NumRegisters]uint32{}
	cpu.Zero = false
	cpu.InInterrupt = false
	cpu.savedPC = 0
	cpu.savedZero = false
	cpu.Output = cpu.Output[:0]
}

// InterruptPending implements the fastforward.Core interface.
func (cpu *CPU) InterruptPending() bool {
	return cpu.intc != nil && cpu.VectorEnabled && !cpu.InInterrupt && cpu.intc.Pending(cpu.id)
}

// AdvanceVirtualCycles implements the fastforward.Core interface.
func (cpu *CPU) AdvanceVirtualCycles(n int) {
	cpu.Cycles += uint64(n)
}

// LoopSafe implements the fastforward.Core interface. An instruction is loop
// safe if it only checks a condition or changes the flow of execution.
func (cpu *CPU) LoopSafe(opcode uint32) bool {
	defn, ok := Decode(opcode).Definition()
	if !ok {
		return false
	}
	switch defn.Effect {
	case Control, Load, Compare, Branch, Jump:
		return true
	}
	return false
}

// Disqualify implements the fastforward.Core interface. Instructions with an
// effect outside of the CPU's view of memory disqualify a loop from ever
// being skipped.
func (cpu *CPU) Disqualify(opcode uint32) bool {
	defn, ok := Decode(opcode).Definition()
	if !ok {
		return true
	}
	switch defn.Effect {
	case Transfer, External, Return:
		return true
	}
	return false
}

// Step implements the fastforward.Core interface. A pending interrupt is
// serviced before the instruction is executed.
func (cpu *CPU) Step() (fastforward.Retired, error) {
	var cycles int

	if cpu.InterruptPending() {
		cpu.intc.Acknowledge(cpu.id)
		cpu.savedPC = cpu.PC
		cpu.savedZero = cpu.Zero
		cpu.PC = cpu.Vector
		cpu.InInterrupt = true
		cycles += InterruptCycles
	}

	addr := cpu.PC
	w, err := cpu.mem.Read(addr, poll.Long)
	if err != nil {
		cpu.Cycles += uint64(cycles + 1)
		return fastforward.Retired{Addr: addr, Cycles: cycles + 1}, curated.Errorf(ExecutionError, cpu.id, err)
	}

	ins := Decode(w)
	defn, ok := ins.Definition()
	if !ok {
		cpu.Cycles += uint64(cycles + 1)
		return fastforward.Retired{Addr: addr, Opcode: w, Cycles: cycles + 1}, curated.Errorf(IllegalOpcode, cpu.id, uint8(ins.Opcode), addr)
	}

	cpu.PC += InstructionSize
	cycles += defn.Cycles

	err = cpu.execute(ins)
	cpu.Cycles += uint64(cycles)

	r := fastforward.Retired{Addr: addr, Opcode: w, Cycles: cycles}
	if err != nil {
		return r, curated.Errorf(ExecutionError, cpu.id, err)
	}
	return r, nil
}

func (cpu *CPU) execute(ins Instruction) error {
	switch ins.Opcode {
	case NOP:

	case MOVI:
		cpu.Regs[ins.Reg] = uint32(ins.Operand)

	case LDB, LDW, LDL:
		sz, _ := ins.Size()
		v, err := cpu.mem.Read(uint32(ins.Operand), sz)
		if err != nil {
			return err
		}
		cpu.Regs[ins.Reg] = v

	case STB, STW, STL:
		sz, _ := ins.Size()
		return cpu.mem.Write(uint32(ins.Operand), sz, cpu.Regs[ins.Reg])

	case CMPI:
		cpu.Zero = cpu.Regs[ins.Reg] == uint32(ins.Operand)

	case BEQ:
		if cpu.Zero {
			cpu.PC = uint32(ins.Operand)
		}

	case BNE:
		if !cpu.Zero {
			cpu.PC = uint32(ins.Operand)
		}

	case BRA:
		cpu.PC = uint32(ins.Operand)

	case ADDI:
		// operand is sign extended
		cpu.Regs[ins.Reg] += uint32(int32(int16(ins.Operand)))
		cpu.Zero = cpu.Regs[ins.Reg] == 0

	case COPY:
		return cpu.mem.DMA(cpu.Regs[ins.Reg], uint32(ins.Operand), CopyLength)

	case OUT:
		cpu.Output = append(cpu.Output, cpu.Regs[ins.Reg])

	case INT:
		if cpu.intc == nil {
			return fmt.Errorf("no interrupt controller")
		}
		core := events.CoreID(ins.Operand)
		if int(ins.Operand) >= events.MaxCores || !core.Valid(cpu.intc.NumCores()) {
			return fmt.Errorf("int: invalid core (%d)", ins.Operand)
		}
		cpu.intc.Raise(core)

	case RTI:
		if !cpu.InInterrupt {
			return fmt.Errorf("rti outside of interrupt")
		}
		cpu.PC = cpu.savedPC
		cpu.Zero = cpu.savedZero
		cpu.InInterrupt = false
	}

	return nil
}
