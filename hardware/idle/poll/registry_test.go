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

package poll_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/idleloop/environment"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
	"github.com/jetsetilly/idleloop/test"
)

// simple memory for testing. big-endian
type mem struct {
	data   []uint8
	writes int
}

func (m *mem) Peek(addr uint32, size poll.Size) (uint32, bool) {
	if int(addr)+int(size) > len(m.data) {
		return 0, false
	}
	var v uint32
	for i := 0; i < int(size); i++ {
		v = v<<8 | uint32(m.data[int(addr)+i])
	}
	return v, true
}

func (m *mem) poke(addr uint32, size poll.Size, v uint32) {
	for i := int(size) - 1; i >= 0; i-- {
		m.data[int(addr)+i] = uint8(v)
		v >>= 8
	}
	m.writes++
}

func newRegistry() (*poll.Registry, *mem) {
	m := &mem{data: make([]uint8, 0x1000)}
	env := environment.NewEnvironment("test", nil)
	return poll.NewRegistry(env, 2, m), m
}

func wordPoll(addr uint32, value uint32) poll.Context {
	return poll.Context{
		Kind:  events.MemoryPoll,
		Addr:  addr,
		Size:  poll.Word,
		Match: poll.MatchPolicy{Kind: poll.WhileEqual, Value: value},
	}
}

func TestListenerOrder(t *testing.T) {
	reg, _ := newRegistry()

	var order []string
	reg.AddListener(events.Master, "a", func(_ events.CoreID, _ events.SysEvent) { order = append(order, "a") })
	reg.AddListener(events.Master, "b", func(_ events.CoreID, _ events.SysEvent) { order = append(order, "b") })
	reg.AddListener(events.Slave, "c", func(_ events.CoreID, _ events.SysEvent) { order = append(order, "c") })
	reg.AddListener(events.Master, "d", func(_ events.CoreID, _ events.SysEvent) { order = append(order, "d") })

	reg.FireSysEvent(events.Master, events.GenericSystem)
	test.ExpectEquality(t, strings.Join(order, ""), "abd")

	order = order[:0]
	reg.FireSysEvent(events.Slave, events.GenericSystem)
	test.ExpectEquality(t, strings.Join(order, ""), "c")
}

func TestDuplicateLabel(t *testing.T) {
	reg, _ := newRegistry()
	fn := func(_ events.CoreID, _ events.SysEvent) {}

	reg.AddListener(events.Master, "dup", fn)

	// same label on a different core is allowed
	reg.AddListener(events.Slave, "dup", fn)

	test.ExpectPanic(t, func() { reg.AddListener(events.Master, "dup", fn) })

	// empty labels are not checked
	reg.AddListener(events.Master, "", fn)
	reg.AddListener(events.Master, "", fn)
	test.ExpectEquality(t, len(reg.Labels(events.Master)), 3)
}

// P6
func TestRemoveListenerIdempotent(t *testing.T) {
	reg, _ := newRegistry()

	var count int
	h := reg.AddListener(events.Master, "counter", func(_ events.CoreID, _ events.SysEvent) { count++ })

	reg.FireSysEvent(events.Master, events.DMA)
	test.ExpectEquality(t, count, 1)

	test.ExpectSuccess(t, reg.RemoveListener(h))
	test.ExpectFailure(t, reg.RemoveListener(h))

	reg.FireSysEvent(events.Master, events.DMA)
	test.ExpectEquality(t, count, 1)

	// zero handle removes nothing
	test.ExpectFailure(t, reg.RemoveListener(poll.Handle{}))

	// label can be reused after removal
	reg.AddListener(events.Master, "counter", func(_ events.CoreID, _ events.SysEvent) {})
}

func TestRemoveDuringFire(t *testing.T) {
	reg, _ := newRegistry()

	var count int
	var h poll.Handle
	h = reg.AddListener(events.Master, "once", func(_ events.CoreID, _ events.SysEvent) {
		count++
		reg.RemoveListener(h)
	})
	reg.AddListener(events.Master, "after", func(_ events.CoreID, _ events.SysEvent) { count++ })

	reg.FireSysEvent(events.Master, events.CommPort)
	test.ExpectEquality(t, count, 2)

	reg.FireSysEvent(events.Master, events.CommPort)
	test.ExpectEquality(t, count, 3)
}

func TestAddListenerAll(t *testing.T) {
	reg, _ := newRegistry()

	var seen uint32
	h := reg.AddListenerAll("all", func(core events.CoreID, _ events.SysEvent) { seen |= core.Bit() })
	test.DemandEquality(t, len(h), 2)

	reg.FireSysEvent(events.Master, events.Interrupt)
	reg.FireSysEvent(events.Slave, events.Interrupt)
	test.ExpectEquality(t, seen, uint32(0x3))

	for _, hh := range h {
		test.ExpectSuccess(t, reg.RemoveListener(hh))
	}
}

// P3
func TestSinglePollerPerCore(t *testing.T) {
	reg, _ := newRegistry()

	test.ExpectEquality(t, reg.AnyPollerActive(), uint32(0))

	reg.SetPoller(events.Master, wordPoll(0x8c, 4))
	test.ExpectEquality(t, reg.AnyPollerActive(), events.Master.Bit())
	test.ExpectPanic(t, func() { reg.SetPoller(events.Master, wordPoll(0x90, 4)) })

	// the original poll is unchanged by the failed call
	test.ExpectEquality(t, reg.Poller(events.Master).Addr, uint32(0x8c))

	reg.SetPoller(events.Slave, wordPoll(0x90, 0))
	test.ExpectEquality(t, reg.AnyPollerActive(), uint32(0x3))

	reg.ResetPoller(events.Master)
	test.ExpectEquality(t, reg.AnyPollerActive(), events.Slave.Bit())
	test.ExpectFailure(t, reg.PollerActive(events.Master))

	// reset of an inactive poller is a no-op
	reg.ResetPoller(events.Master)
	test.ExpectEquality(t, reg.AnyPollerActive(), events.Slave.Bit())

	// reading an inactive poller is a contract violation
	test.ExpectPanic(t, func() { reg.Poller(events.Master) })

	// poller can be installed again after reset
	reg.SetPoller(events.Master, wordPoll(0x8c, 4))
	test.ExpectSuccess(t, reg.PollerActive(events.Master))
}

func TestInvalidCore(t *testing.T) {
	reg, _ := newRegistry()
	test.ExpectPanic(t, func() { reg.FireSysEvent(events.CoreID(2), events.DMA) })
	test.ExpectPanic(t, func() { reg.SetPoller(events.CoreID(5), wordPoll(0, 0)) })
	test.ExpectPanic(t, func() { reg.AddListener(events.CoreID(7), "x", func(_ events.CoreID, _ events.SysEvent) {}) })
}

// P4
func TestInvalidatingListener(t *testing.T) {
	reg, _ := newRegistry()

	// a listener that follows the invalidation table
	reg.AddListenerAll("invalidate", func(core events.CoreID, ev events.SysEvent) {
		if reg.PollerActive(core) && events.Invalidates(ev, reg.Poller(core).Kind) {
			reg.ResetPoller(core)
		}
	})

	for ev := events.SysEvent(0); int(ev) < events.NumSysEvents; ev++ {
		reg.SetPoller(events.Master, wordPoll(0x8c, 4))
		reg.FireSysEvent(events.Master, ev)
		active := reg.AnyPollerActive()&events.Master.Bit() != 0
		test.ExpectEquality(t, active, !events.Invalidates(ev, events.MemoryPoll), ev)
		reg.ResetPoller(events.Master)

		reg.SetPoller(events.Master, poll.Context{Kind: events.BusyLoop})
		reg.FireSysEvent(events.Master, ev)
		active = reg.AnyPollerActive()&events.Master.Bit() != 0
		test.ExpectEquality(t, active, !events.Invalidates(ev, events.BusyLoop), ev)
		reg.ResetPoller(events.Master)
	}
}

// P5
func TestReadPolledValueIsLive(t *testing.T) {
	reg, m := newRegistry()

	m.poke(0x8c, poll.Word, 4)
	reg.SetPoller(events.Master, wordPoll(0x8c, 4))
	ctx := reg.Poller(events.Master)

	for i := uint32(0); i < 100; i++ {
		m.poke(0x8c, poll.Word, i*7)
		v, ok := reg.ReadPolledValue(ctx)
		test.ExpectSuccess(t, ok)
		test.ExpectEquality(t, v, (i*7)&0xffff)
	}

	// write to the neighbouring byte does not change the word
	m.poke(0x8c, poll.Word, 0x1234)
	m.poke(0x8e, poll.Byte, 0xff)
	v, _ := reg.ReadPolledValue(ctx)
	test.ExpectEquality(t, v, uint32(0x1234))

	// reading after the poll has been reset is a contract violation
	reg.ResetPoller(events.Master)
	test.ExpectPanic(t, func() { reg.ReadPolledValue(ctx) })

	// nor is reading a copy of a poll that has since been replaced
	reg.SetPoller(events.Master, wordPoll(0x90, 4))
	test.ExpectPanic(t, func() { reg.ReadPolledValue(ctx) })
	_, ok := reg.ReadPolledValue(reg.Poller(events.Master))
	test.ExpectSuccess(t, ok)
}

func TestReadPolledValueUnresolved(t *testing.T) {
	reg, _ := newRegistry()

	reg.SetPoller(events.Master, poll.Context{Kind: events.BusyLoop})
	_, ok := reg.ReadPolledValue(reg.Poller(events.Master))
	test.ExpectFailure(t, ok)

	// unmapped address
	reg.SetPoller(events.Slave, wordPoll(0x2000, 0))
	_, ok = reg.ReadPolledValue(reg.Poller(events.Slave))
	test.ExpectFailure(t, ok)
}

func TestNotifyWrite(t *testing.T) {
	reg, _ := newRegistry()

	var fired []events.CoreID
	reg.AddListenerAll("record", func(core events.CoreID, ev events.SysEvent) {
		fired = append(fired, core)
		reg.ResetPoller(core)
	})

	reg.SetPoller(events.Master, wordPoll(0x8c, 4))
	reg.SetPoller(events.Slave, poll.Context{Kind: events.BusyLoop})

	// different address
	reg.NotifyWrite(0x90, poll.Word, events.SharedMemory)
	test.ExpectEquality(t, len(fired), 0)

	// overlapping byte write to the second byte of the word
	reg.NotifyWrite(0x8d, poll.Byte, events.SharedMemory)
	test.DemandEquality(t, len(fired), 1)
	test.ExpectEquality(t, fired[0], events.Master)

	// busy loops are never notified of writes
	reg.NotifyWrite(0x0, poll.Long, events.SharedMemory)
	test.ExpectEquality(t, len(fired), 1)
}

func TestNotifyRange(t *testing.T) {
	reg, _ := newRegistry()

	var fired int
	reg.AddListener(events.Master, "record", func(core events.CoreID, ev events.SysEvent) {
		test.ExpectEquality(t, ev, events.DMA)
		fired++
	})

	reg.SetPoller(events.Master, wordPoll(0x8c, 4))

	reg.NotifyRange(0x80, 0x0c, events.DMA)
	test.ExpectEquality(t, fired, 0)
	reg.NotifyRange(0x80, 0, events.DMA)
	test.ExpectEquality(t, fired, 0)

	// range ends on the second byte of the polled word
	reg.NotifyRange(0x80, 0x0e, events.DMA)
	test.ExpectEquality(t, fired, 1)
	reg.NotifyRange(0x8d, 0x100, events.DMA)
	test.ExpectEquality(t, fired, 2)
}

func TestMatchPolicy(t *testing.T) {
	m := poll.MatchPolicy{Kind: poll.WhileEqual, Value: 4}
	test.ExpectSuccess(t, m.Waiting(4))
	test.ExpectFailure(t, m.Waiting(0))

	m = poll.MatchPolicy{Kind: poll.WhileNotEqual, Value: 0}
	test.ExpectSuccess(t, m.Waiting(4))
	test.ExpectFailure(t, m.Waiting(0))

	m = poll.MatchPolicy{Kind: poll.WhileEqual, Value: 0, Mask: 0x80}
	test.ExpectSuccess(t, m.Waiting(0x7f))
	test.ExpectFailure(t, m.Waiting(0x80))
}

func TestReset(t *testing.T) {
	reg, _ := newRegistry()

	var count int
	reg.AddListenerAll("count", func(_ events.CoreID, _ events.SysEvent) { count++ })
	reg.SetPoller(events.Master, wordPoll(0x8c, 4))

	reg.Reset()
	test.ExpectEquality(t, reg.AnyPollerActive(), uint32(0))
	reg.FireSysEvent(events.Master, events.Interrupt)
	test.ExpectEquality(t, count, 0)
}

func TestMemviz(t *testing.T) {
	reg, _ := newRegistry()
	reg.AddListener(events.Master, "scheduler", func(_ events.CoreID, _ events.SysEvent) {})
	reg.SetPoller(events.Master, wordPoll(0x8c, 4))

	w := &strings.Builder{}
	reg.Memviz(w)
	test.ExpectSuccess(t, strings.Contains(w.String(), "digraph"))
	test.ExpectSuccess(t, strings.Contains(w.String(), "scheduler"))
}
