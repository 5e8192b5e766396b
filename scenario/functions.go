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

package scenario

import (
	"strings"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/hardware/cpu/spin"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
	lua "github.com/yuin/gopher-lua"
)

func (s *Scenario) bind() {
	s.L.SetGlobal("MASTER", lua.LNumber(events.Master))
	s.L.SetGlobal("SLAVE", lua.LNumber(events.Slave))

	for name, fn := range map[string]lua.LGFunction{
		"load":      s.load,
		"vector":    s.vector,
		"write":     s.write,
		"poke":      s.poke,
		"read":      s.read,
		"dma":       s.dma,
		"interrupt": s.interrupt,
		"reset":     s.reset,
		"hold":      s.hold,
		"release":   s.release,
		"run":       s.run,
		"state":     s.state,
		"stats":     s.stats,
		"count":     s.count,
		"expect":    s.expect,
		"log":       s.log,
	} {
		s.L.SetGlobal(name, s.L.NewFunction(fn))
	}
}

func (s *Scenario) checkCore(L *lua.LState, n int) events.CoreID {
	v := L.CheckInt(n)
	if v < 0 || v >= s.m.Config().NumCores {
		L.ArgError(n, "invalid core")
	}
	return events.CoreID(v)
}

func checkSize(L *lua.LState, n int) poll.Size {
	switch v := L.CheckInt(n); v {
	case 1:
		return poll.Byte
	case 2:
		return poll.Word
	case 4:
		return poll.Long
	}
	L.ArgError(n, "size must be 1, 2 or 4")
	return 0
}

func checkAddr(L *lua.LState, n int) uint32 {
	v := L.CheckInt(n)
	if v < 0 {
		L.ArgError(n, "negative address")
	}
	return uint32(v)
}

func (s *Scenario) load(L *lua.LState) int {
	core := s.checkCore(L, 1)
	origin := checkAddr(L, 2)
	src := L.CheckString(3)

	p, err := spin.Assemble(origin, src)
	if err != nil {
		s.fail("load", err)
	}
	if err := s.m.Load(core, p); err != nil {
		s.fail("load", err)
	}
	return 0
}

func (s *Scenario) vector(L *lua.LState) int {
	if err := s.m.SetVector(s.checkCore(L, 1), checkAddr(L, 2)); err != nil {
		s.fail("vector", err)
	}
	return 0
}

func (s *Scenario) write(L *lua.LState) int {
	addr := checkAddr(L, 1)
	size := checkSize(L, 2)
	value := uint32(L.CheckInt64(3))
	if err := s.m.Mem.Write(addr, size, value); err != nil {
		s.fail("write", err)
	}
	return 0
}

func (s *Scenario) poke(L *lua.LState) int {
	addr := checkAddr(L, 1)
	size := checkSize(L, 2)
	value := uint32(L.CheckInt64(3))
	if err := s.m.Mem.Poke(addr, size, value); err != nil {
		s.fail("poke", err)
	}
	return 0
}

func (s *Scenario) read(L *lua.LState) int {
	addr := checkAddr(L, 1)
	size := checkSize(L, 2)
	v, err := s.m.Mem.Read(addr, size)
	if err != nil {
		s.fail("read", err)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (s *Scenario) dma(L *lua.LState) int {
	if err := s.m.Mem.DMA(checkAddr(L, 1), checkAddr(L, 2), L.CheckInt(3)); err != nil {
		s.fail("dma", err)
	}
	return 0
}

func (s *Scenario) interrupt(L *lua.LState) int {
	s.m.Interrupts.Raise(s.checkCore(L, 1))
	return 0
}

func (s *Scenario) reset(L *lua.LState) int {
	if err := s.m.ResetCore(s.checkCore(L, 1)); err != nil {
		s.fail("reset", err)
	}
	return 0
}

func (s *Scenario) hold(L *lua.LState) int {
	if err := s.m.Hold(s.checkCore(L, 1)); err != nil {
		s.fail("hold", err)
	}
	return 0
}

func (s *Scenario) release(L *lua.LState) int {
	if err := s.m.Release(s.checkCore(L, 1)); err != nil {
		s.fail("release", err)
	}
	return 0
}

func (s *Scenario) run(L *lua.LState) int {
	if err := s.m.Run(L.CheckInt(1)); err != nil {
		s.fail("run", err)
	}
	return 0
}

func (s *Scenario) state(L *lua.LState) int {
	L.Push(lua.LString(s.m.Scheduler.State(s.checkCore(L, 1)).String()))
	return 1
}

func (s *Scenario) stats(L *lua.LState) int {
	st := s.m.Scheduler.Stats(s.checkCore(L, 1))

	t := L.NewTable()
	t.RawSetString("retired", lua.LNumber(st.Retired))
	t.RawSetString("executed", lua.LNumber(st.ExecutedCycles))
	t.RawSetString("skipped", lua.LNumber(st.SkippedCycles))
	t.RawSetString("polls", lua.LNumber(st.Polls))
	t.RawSetString("busyloops", lua.LNumber(st.BusyLoops))
	t.RawSetString("nonbusy", lua.LNumber(st.NonBusy))
	t.RawSetString("fallbacks", lua.LNumber(st.Fallbacks()))
	t.RawSetString("throttle", lua.LNumber(st.ThrottleCharges))

	L.Push(t)
	return 1
}

func (s *Scenario) count(L *lua.LState) int {
	core := s.checkCore(L, 1)
	name := strings.ToLower(L.CheckString(2))
	for ev := events.None; int(ev) < events.NumSysEvents; ev++ {
		if ev.String() == name {
			L.Push(lua.LNumber(s.m.Diagnostics.Count(core, ev)))
			return 1
		}
	}
	L.ArgError(2, "unknown event")
	return 0
}

func (s *Scenario) expect(L *lua.LState) int {
	cond := L.ToBool(1)
	msg := L.OptString(2, "")
	if !cond {
		s.cause = curated.Errorf(ExpectationFailed, strings.TrimSuffix(L.Where(1), ":"), msg)
		L.RaiseError("%s", s.cause.Error())
	}
	s.expectations++
	return 0
}

func (s *Scenario) log(L *lua.LState) int {
	var b strings.Builder
	for i := 1; i <= L.GetTop(); i++ {
		if i > 1 {
			b.WriteString(" ")
		}
		b.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
	s.logf("%s", b.String())
	return 0
}
