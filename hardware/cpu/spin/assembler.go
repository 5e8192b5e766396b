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
	"strconv"
	"strings"

	"github.com/jetsetilly/idleloop/curated"
)

// AssemblerError is the sentinal error pattern for all assembly errors.
const AssemblerError = "spin: assembler: line %d: %v"

// Program is the result of assembly.
type Program struct {
	Origin uint32
	Words  []uint32

	// address of every label and value of every constant
	Symbols map[string]uint32
}

// Bytes returns the program as big-endian bytes suitable for loading into
// memory.
func (p Program) Bytes() []uint8 {
	b := make([]uint8, 0, len(p.Words)*InstructionSize)
	for _, w := range p.Words {
		b = append(b, uint8(w>>24), uint8(w>>16), uint8(w>>8), uint8(w))
	}
	return b
}

// Memtop returns the address of the last byte of the program.
func (p Program) Memtop() uint32 {
	return p.Origin + uint32(len(p.Words)*InstructionSize) - 1
}

type line struct {
	num    int
	fields []string
}

// Assemble source text into a Program starting at origin. The syntax is one
// instruction per line with operands separated by commas. Comments begin
// with a semicolon. A label is an identifier followed by a colon.
//
// Directives:
//
//	.org address		advance the assembly address, padding with NOPs
//	.word value		emit a 32bit data word
//	.equ name, value	define a constant
//
// Numbers are decimal or prefixed with 0x or $ for hexadecimal.
func Assemble(origin uint32, src string) (Program, error) {
	p := Program{
		Origin:  origin,
		Symbols: make(map[string]uint32),
	}

	var lines []line

	// first pass collects symbols and the size of the program
	pc := origin
	for i, s := range strings.Split(src, "\n") {
		num := i + 1

		s, _, _ = strings.Cut(s, ";")
		s = strings.TrimSpace(s)

		if l, rest, ok := strings.Cut(s, ":"); ok {
			l = strings.TrimSpace(l)
			if !validSymbol(l) {
				return Program{}, curated.Errorf(AssemblerError, num, fmt.Sprintf("invalid label (%s)", l))
			}
			if _, ok := p.Symbols[l]; ok {
				return Program{}, curated.Errorf(AssemblerError, num, fmt.Sprintf("duplicate symbol (%s)", l))
			}
			p.Symbols[l] = pc
			s = strings.TrimSpace(rest)
		}

		if s == "" {
			continue
		}

		fields := tokenise(s)

		switch fields[0] {
		case ".equ":
			if len(fields) != 3 || !validSymbol(fields[1]) {
				return Program{}, curated.Errorf(AssemblerError, num, "malformed .equ")
			}
			if _, ok := p.Symbols[fields[1]]; ok {
				return Program{}, curated.Errorf(AssemblerError, num, fmt.Sprintf("duplicate symbol (%s)", fields[1]))
			}
			v, err := p.value(fields[2])
			if err != nil {
				return Program{}, curated.Errorf(AssemblerError, num, err)
			}
			p.Symbols[fields[1]] = v
			continue
		case ".org":
			if len(fields) != 2 {
				return Program{}, curated.Errorf(AssemblerError, num, "malformed .org")
			}
			v, err := p.value(fields[1])
			if err != nil {
				return Program{}, curated.Errorf(AssemblerError, num, err)
			}
			if v < pc || v%InstructionSize != 0 {
				return Program{}, curated.Errorf(AssemblerError, num, fmt.Sprintf(".org address ($%04x) is not valid", v))
			}
			pc = v
		default:
			pc += InstructionSize
		}

		lines = append(lines, line{num: num, fields: fields})
	}

	// second pass emits words
	for _, l := range lines {
		switch l.fields[0] {
		case ".org":
			v, _ := p.value(l.fields[1])
			for p.Origin+uint32(len(p.Words)*InstructionSize) < v {
				p.Words = append(p.Words, Instruction{Opcode: NOP}.Encode())
			}
		case ".word":
			if len(l.fields) != 2 {
				return Program{}, curated.Errorf(AssemblerError, l.num, "malformed .word")
			}
			v, err := p.value(l.fields[1])
			if err != nil {
				return Program{}, curated.Errorf(AssemblerError, l.num, err)
			}
			p.Words = append(p.Words, v)
		default:
			ins, err := p.instruction(l.fields)
			if err != nil {
				return Program{}, curated.Errorf(AssemblerError, l.num, err)
			}
			p.Words = append(p.Words, ins.Encode())
		}
	}

	return p, nil
}

// MustAssemble is like Assemble but panics on error. For use with programs
// that are known to be correct.
func MustAssemble(origin uint32, src string) Program {
	p, err := Assemble(origin, src)
	if err != nil {
		panic(err)
	}
	return p
}

func tokenise(s string) []string {
	mnemonic, rest := s, ""
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		mnemonic, rest = s[:i], strings.TrimSpace(s[i:])
	}
	fields := []string{strings.ToLower(mnemonic)}
	if rest == "" {
		return fields
	}
	for _, f := range strings.Split(rest, ",") {
		fields = append(fields, strings.TrimSpace(f))
	}
	return fields
}

func validSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func (p Program) value(s string) (uint32, error) {
	if v, ok := p.Symbols[s]; ok {
		return v, nil
	}
	n := s
	if strings.HasPrefix(n, "$") {
		n = "0x" + n[1:]
	}
	v, err := strconv.ParseInt(n, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognised value (%s)", s)
	}
	return uint32(v), nil
}

func (p Program) operand(s string) (uint16, error) {
	v, err := p.value(s)
	if err != nil {
		return 0, err
	}
	if int32(v) < -0x8000 || (int32(v) >= 0 && v > 0xffff) {
		return 0, fmt.Errorf("value out of range (%s)", s)
	}
	return uint16(v), nil
}

func register(s string) (int, error) {
	s = strings.ToLower(s)
	if len(s) != 2 || s[0] != 'r' || s[1] < '0' || s[1] >= '0'+NumRegisters {
		return 0, fmt.Errorf("invalid register (%s)", s)
	}
	return int(s[1] - '0'), nil
}

func (p Program) instruction(fields []string) (Instruction, error) {
	defn, ok := LookupMnemonic(fields[0])
	if !ok {
		return Instruction{}, fmt.Errorf("unknown mnemonic (%s)", fields[0])
	}

	ins := Instruction{Opcode: defn.Opcode}
	args := fields[1:]

	want := 0
	switch defn.Shape {
	case RegImm, RegAddr:
		want = 2
	case Addr, Imm, Reg:
		want = 1
	}
	if len(args) != want {
		return Instruction{}, fmt.Errorf("%s expects %d operands", defn.Mnemonic, want)
	}

	var err error
	switch defn.Shape {
	case RegImm, RegAddr:
		if ins.Reg, err = register(args[0]); err != nil {
			return Instruction{}, err
		}
		if ins.Operand, err = p.operand(args[1]); err != nil {
			return Instruction{}, err
		}
	case Addr, Imm:
		if ins.Operand, err = p.operand(args[0]); err != nil {
			return Instruction{}, err
		}
	case Reg:
		if ins.Reg, err = register(args[0]); err != nil {
			return Instruction{}, err
		}
	}

	return ins, nil
}
