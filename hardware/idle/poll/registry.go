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

	"github.com/jetsetilly/idleloop/environment"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
)

// Memory is the interface to the memory subsystem used to read the live value
// of a polled location. Peek() must return the current value regardless of
// any caching in the memory subsystem. The bool return is false if the
// address is not mapped.
type Memory interface {
	Peek(addr uint32, size Size) (uint32, bool)
}

// Listener is called synchronously when an event is fired for a core.
type Listener func(core events.CoreID, ev events.SysEvent)

// Handle identifies a registered listener. It is returned by AddListener()
// and used to remove the listener with RemoveListener(). The zero Handle
// identifies nothing.
type Handle struct {
	core events.CoreID
	id   uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("%s listener %d", h.core, h.id)
}

type listener struct {
	id    uint32
	label string
	fn    Listener
}

// Registry is the cross-core event bus and the record of active polls.
type Registry struct {
	env      *environment.Environment
	numCores int
	mem      Memory

	// listeners in registration order. dense is rebuilt from listeners on
	// every add and remove so that FireSysEvent() does no lookup
	listeners [events.MaxCores][]listener
	dense     [events.MaxCores][]Listener

	pollers [events.MaxCores]Context

	// bit set for every core with an active poller
	active uint32

	nextID uint32
}

// NewRegistry is the preferred method of initialisation for the Registry
// type. The memory is used by ReadPolledValue() and can be attached later
// with AttachMemory().
func NewRegistry(env *environment.Environment, numCores int, mem Memory) *Registry {
	if numCores < 1 || numCores > events.MaxCores {
		panic(fmt.Sprintf("poll: number of cores (%d) out of range", numCores))
	}
	return &Registry{
		env:      env,
		numCores: numCores,
		mem:      mem,
	}
}

// AttachMemory sets the memory used to read polled values.
func (r *Registry) AttachMemory(mem Memory) {
	r.mem = mem
}

// NumCores returns the number of cores the registry was created for.
func (r *Registry) NumCores() int {
	return r.numCores
}

func (r *Registry) checkCore(core events.CoreID, op string) {
	if !core.Valid(r.numCores) {
		panic(fmt.Sprintf("poll: %s: invalid core (%d)", op, core))
	}
}

func (r *Registry) rebuild(core events.CoreID) {
	d := make([]Listener, len(r.listeners[core]))
	for i, l := range r.listeners[core] {
		d[i] = l.fn
	}
	r.dense[core] = d
}

// AddListener registers a function to be called when an event is fired for
// the core. The label is for diagnostics and must be unique for the core if it
// is not empty.
func (r *Registry) AddListener(core events.CoreID, label string, fn Listener) Handle {
	r.checkCore(core, "add listener")
	if fn == nil {
		panic("poll: add listener: nil listener function")
	}

	if label != "" {
		for _, l := range r.listeners[core] {
			if l.label == label {
				panic(fmt.Sprintf("poll: add listener: duplicate label (%s) for %s", label, core))
			}
		}
	}

	r.nextID++
	r.listeners[core] = append(r.listeners[core], listener{
		id:    r.nextID,
		label: label,
		fn:    fn,
	})
	r.rebuild(core)

	return Handle{core: core, id: r.nextID}
}

// AddListenerAll registers the function with every core.
func (r *Registry) AddListenerAll(label string, fn Listener) []Handle {
	h := make([]Handle, 0, r.numCores)
	for _, c := range events.Cores(r.numCores) {
		h = append(h, r.AddListener(c, label, fn))
	}
	return h
}

// RemoveListener removes a listener. Returns false if the listener was not
// registered, which might be because it has already been removed.
func (r *Registry) RemoveListener(h Handle) bool {
	if h.id == 0 || !h.core.Valid(r.numCores) {
		return false
	}

	for i, l := range r.listeners[h.core] {
		if l.id == h.id {
			r.listeners[h.core] = append(r.listeners[h.core][:i:i], r.listeners[h.core][i+1:]...)
			r.rebuild(h.core)
			return true
		}
	}

	return false
}

// Labels returns the labels of the listeners registered for the core, in
// registration order.
func (r *Registry) Labels(core events.CoreID) []string {
	r.checkCore(core, "labels")
	s := make([]string, len(r.listeners[core]))
	for i, l := range r.listeners[core] {
		s[i] = l.label
	}
	return s
}

// FireSysEvent calls every listener registered for the core in registration
// order.
func (r *Registry) FireSysEvent(core events.CoreID, ev events.SysEvent) {
	r.checkCore(core, "fire")

	// listeners may add or remove listeners. the dense slice is replaced in
	// that case so ranging over it here is safe
	for _, fn := range r.dense[core] {
		fn(core, ev)
	}
}

// NotifyWrite is called by the memory subsystem when a write is made to the
// address range. The event is fired for every core with an active memory poll
// that overlaps the range.
func (r *Registry) NotifyWrite(addr uint32, size Size, ev events.SysEvent) {
	r.NotifyRange(addr, uint32(size), ev)
}

// NotifyRange is like NotifyWrite but for a range of n bytes. Used for block
// transfers.
func (r *Registry) NotifyRange(addr uint32, n uint32, ev events.SysEvent) {
	if r.active == 0 {
		return
	}

	// take a copy of the active mask because listeners will reset pollers
	active := r.active
	for c := 0; c < r.numCores; c++ {
		core := events.CoreID(c)
		if active&core.Bit() == 0 {
			continue
		}
		if r.pollers[core].OverlapsRange(addr, n) {
			r.FireSysEvent(core, ev)
		}
	}
}

// SetPoller installs the active poll for the core. It is a programming error
// to call SetPoller() for a core that already has an active poll.
func (r *Registry) SetPoller(core events.CoreID, ctx Context) {
	r.checkCore(core, "set poller")
	if r.active&core.Bit() != 0 {
		panic(fmt.Sprintf("poll: set poller: %s already has an active poll (%s)", core, r.pollers[core]))
	}
	if ctx.Kind == events.MemoryPoll && ctx.Size != Byte && ctx.Size != Word && ctx.Size != Long {
		panic(fmt.Sprintf("poll: set poller: invalid size for %s", ctx))
	}

	ctx.Core = core
	ctx.Active = true
	r.pollers[core] = ctx
	r.active |= core.Bit()
}

// ResetPoller deactivates the poll for the core. Does nothing if there is no
// active poll.
func (r *Registry) ResetPoller(core events.CoreID) {
	r.checkCore(core, "reset poller")
	r.pollers[core] = Context{}
	r.active &^= core.Bit()
}

// Poller returns the active poll for the core. It is a programming error to
// call Poller() for a core with no active poll.
func (r *Registry) Poller(core events.CoreID) Context {
	r.checkCore(core, "poller")
	if r.active&core.Bit() == 0 {
		panic(fmt.Sprintf("poll: poller: %s has no active poll", core))
	}
	return r.pollers[core]
}

// PollerActive returns true if the core has an active poll.
func (r *Registry) PollerActive(core events.CoreID) bool {
	r.checkCore(core, "poller active")
	return r.active&core.Bit() != 0
}

// AnyPollerActive returns a bitmask with a bit set for every core that has an
// active poll. See CoreID.Bit().
func (r *Registry) AnyPollerActive() uint32 {
	return r.active
}

// ReadPolledValue reads the live value of the polled location from memory.
// The bool return is false if the poll has no single memory target (a busy
// loop) or if the address is not mapped. In which case the value should be
// considered unresolved and the core should keep spinning.
//
// It is a programming error to read the value of a context that is not the
// active poll of its core. A copy of a context that has since been replaced
// is not the active poll.
func (r *Registry) ReadPolledValue(ctx Context) (uint32, bool) {
	r.checkCore(ctx.Core, "read polled value")
	if !ctx.Active || r.active&ctx.Core.Bit() == 0 || ctx != r.pollers[ctx.Core] {
		panic(fmt.Sprintf("poll: read polled value: context is not active (%s)", ctx))
	}

	if ctx.Kind != events.MemoryPoll || r.mem == nil {
		return 0, false
	}

	v, ok := r.mem.Peek(ctx.Addr, ctx.Size)
	if !ok {
		return 0, false
	}

	return v & ctx.Size.Mask(), true
}

// Reset removes all listeners and all active polls.
func (r *Registry) Reset() {
	for c := range r.listeners {
		r.listeners[c] = nil
		r.dense[c] = nil
		r.pollers[c] = Context{}
	}
	r.active = 0
	r.env.Log.Log(r.env, "poll", "registry reset")
}
