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

package poll

import (
	"fmt"

	"github.com/jetsetilly/idleloop/hardware/idle/events"
)

// Size of the polled value.
type Size int

// List of valid Size values.
const (
	Byte Size = 1
	Word Size = 2
	Long Size = 4
)

func (s Size) String() string {
	switch s {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Long:
		return "long"
	}
	return fmt.Sprintf("unknown size (%d)", int(s))
}

// Mask returns the mask for a value of the size.
func (s Size) Mask() uint32 {
	switch s {
	case Byte:
		return 0xff
	case Word:
		return 0xffff
	}
	return 0xffffffff
}

// MatchKind is the type of comparison made by a MatchPolicy.
type MatchKind int

// List of valid MatchKind values.
const (
	// the loop waits for as long as the value equals the match value
	WhileEqual MatchKind = iota

	// the loop waits for as long as the value does not equal the match value
	WhileNotEqual
)

// MatchPolicy describes the condition a polling loop is waiting on.
type MatchPolicy struct {
	Kind  MatchKind
	Value uint32

	// bits of the polled value that take part in the comparison. a value of
	// zero means all bits
	Mask uint32
}

func (m MatchPolicy) String() string {
	op := "=="
	if m.Kind == WhileNotEqual {
		op = "!="
	}
	if m.Mask == 0 {
		return fmt.Sprintf("while %s %#x", op, m.Value)
	}
	return fmt.Sprintf("while &%#x %s %#x", m.Mask, op, m.Value)
}

// Waiting returns true if the loop would still be waiting if the polled
// location held the value v.
func (m MatchPolicy) Waiting(v uint32) bool {
	mask := m.Mask
	if mask == 0 {
		mask = 0xffffffff
	}
	eq := v&mask == m.Value&mask
	if m.Kind == WhileNotEqual {
		return !eq
	}
	return eq
}

// Target is the outcome of a core's analysis of a confirmed loop.
type Target int

// List of valid Target values.
const (
	// the loop reads no memory. only an interrupt can end it
	NoTarget Target = iota

	// the loop waits on the single location described by the Context
	Resolved

	// the loop reads memory but no single location it waits on could be
	// found. the loop must not be skipped
	Unresolved
)

func (t Target) String() string {
	switch t {
	case NoTarget:
		return "no target"
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	}
	return fmt.Sprintf("unknown target (%d)", int(t))
}

// Context describes what a specific core is currently polling on.
type Context struct {
	Core events.CoreID
	Kind events.PollKind

	// Addr, Size and Match are meaningless if Kind is events.BusyLoop
	Addr  uint32
	Size  Size
	Match MatchPolicy

	Active bool
}

func (ctx Context) String() string {
	if ctx.Kind == events.BusyLoop {
		return fmt.Sprintf("%s: busy loop", ctx.Core)
	}
	return fmt.Sprintf("%s: %s at %#x %s", ctx.Core, ctx.Size, ctx.Addr, ctx.Match)
}

// Overlaps returns true if the context is a memory poll that overlaps the
// address range.
func (ctx Context) Overlaps(addr uint32, size Size) bool {
	return ctx.OverlapsRange(addr, uint32(size))
}

// OverlapsRange is like Overlaps but for a range of n bytes.
func (ctx Context) OverlapsRange(addr uint32, n uint32) bool {
	if ctx.Kind != events.MemoryPoll || n == 0 {
		return false
	}
	return addr < ctx.Addr+uint32(ctx.Size) && ctx.Addr < addr+n
}
