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

package loops

import (
	"fmt"
)

// Entry is a single retired instruction.
type Entry struct {
	Addr   uint32
	Opcode uint32
}

// SignalKind is the type of Signal returned by Observe().
type SignalKind int

// List of valid SignalKind values.
const (
	NoSignal SignalKind = iota
	Enter
	Exit
)

func (k SignalKind) String() string {
	switch k {
	case NoSignal:
		return "none"
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	}
	return "unknown signal"
}

// Signal is returned by Observe().
type Signal struct {
	Kind SignalKind

	// for Enter signals, whether the loop is safe to skip
	Busy bool

	// for Enter signals, whether the loop was already in the KnownLoops table
	Known bool

	// the ID of the loop being entered or exited
	LoopID uint16
}

func (s Signal) String() string {
	switch s.Kind {
	case Enter:
		return fmt.Sprintf("enter loop %d (busy=%v known=%v)", s.LoopID, s.Busy, s.Known)
	case Exit:
		return fmt.Sprintf("exit loop %d", s.LoopID)
	}
	return "none"
}

// OpcodePredicate is used to classify opcodes.
type OpcodePredicate func(opcode uint32) bool

// Config for a Detector.
type Config struct {
	// number of entries in each generation
	Window int

	// number of successive successful comparisons before a loop is confirmed
	Hysteresis int

	// use the KnownLoops table to confirm loops that have been seen before
	// with a single comparison
	KnownLoops bool

	// returns true if the opcode has no effect other than checking a
	// condition and branching. a nil function means no opcode is loop-safe
	LoopSafe OpcodePredicate

	// returns true if the opcode has unpredictable external effects. a loop
	// containing such an opcode is never busy. can be nil
	Disqualify OpcodePredicate
}

// Detector is the loop history of a single core.
type Detector struct {
	cfg Config

	// the two generations. gen[cur] is being filled
	gen    [2][]Entry
	cur    int
	cursor int

	// the previous generation has been filled at least once
	primed bool

	repeats int
	looping bool
	busy    bool
	loopID  uint16

	// copy of the window that confirmed the current loop
	window []Entry

	known  *KnownLoops
	nextID uint16

	// busy classification of every loop ID in the known table
	records map[uint16]bool

	// scratch space for classification
	distinct map[uint32]struct{}
	addrs    []uint32
}

// NewDetector is the preferred method of initialisation for the Detector
// type. Panics if the window or hysteresis values are out of range.
func NewDetector(cfg Config) *Detector {
	if cfg.Window < 2 {
		panic(fmt.Sprintf("loops: window size (%d) too small", cfg.Window))
	}
	if cfg.Hysteresis < 1 {
		panic(fmt.Sprintf("loops: hysteresis (%d) too small", cfg.Hysteresis))
	}

	d := &Detector{
		cfg:      cfg,
		known:    NewKnownLoops(),
		records:  make(map[uint16]bool),
		distinct: make(map[uint32]struct{}, cfg.Window),
		addrs:    make([]uint32, cfg.Window),
	}
	d.gen[0] = make([]Entry, cfg.Window)
	d.gen[1] = make([]Entry, cfg.Window)

	return d
}

// Config returns the configuration of the Detector.
func (d *Detector) Config() Config {
	return d.cfg
}

// Observe records a retired instruction. The returned Signal will be NoSignal
// except at the end of a generation.
func (d *Detector) Observe(addr uint32, opcode uint32) Signal {
	d.gen[d.cur][d.cursor] = Entry{Addr: addr, Opcode: opcode}
	d.cursor++
	if d.cursor < d.cfg.Window {
		return Signal{}
	}

	sig := d.compare()

	// swap generation roles
	d.cur ^= 1
	d.cursor = 0

	return sig
}

func (d *Detector) compare() Signal {
	if !d.primed {
		d.primed = true
		return Signal{}
	}

	cur := d.gen[d.cur]
	prev := d.gen[d.cur^1]

	for i := range cur {
		if cur[i] != prev[i] {
			return d.mismatch()
		}
	}

	// generations are equal. nothing to do if the loop has already been
	// confirmed
	if d.looping {
		return Signal{}
	}

	d.repeats++

	threshold := d.cfg.Hysteresis
	id, known := d.knownWindow(cur)
	if known && d.cfg.KnownLoops {
		threshold = 1
	}

	if d.repeats < threshold {
		return Signal{}
	}

	d.looping = true
	d.window = append(d.window[:0], cur...)

	if known {
		d.loopID = id
		d.busy = d.records[id]
	} else {
		d.busy = d.classify(cur)
		d.loopID = d.newID()
		for i := range cur {
			d.addrs[i] = cur[i].Addr
		}
		d.known.Tag(d.addrs, d.loopID)
		d.records[d.loopID] = d.busy
	}

	return Signal{Kind: Enter, Busy: d.busy, Known: known, LoopID: d.loopID}
}

func (d *Detector) mismatch() Signal {
	d.repeats = 0
	if !d.looping {
		return Signal{}
	}
	d.looping = false
	d.busy = false
	return Signal{Kind: Exit, LoopID: d.loopID}
}

// returns the loop ID if every address in the generation belongs to the same
// known loop.
func (d *Detector) knownWindow(gen []Entry) (uint16, bool) {
	id, ok := d.known.Lookup(gen[0].Addr)
	if !ok {
		return 0, false
	}
	for _, e := range gen[1:] {
		if i, ok := d.known.Lookup(e.Addr); !ok || i != id {
			return 0, false
		}
	}
	return id, true
}

// a loop is busy if every distinct opcode is loop-safe and none are
// disqualified.
func (d *Detector) classify(gen []Entry) bool {
	if d.cfg.LoopSafe == nil {
		return false
	}

	for k := range d.distinct {
		delete(d.distinct, k)
	}
	for _, e := range gen {
		d.distinct[e.Opcode] = struct{}{}
	}

	for op := range d.distinct {
		if d.cfg.Disqualify != nil && d.cfg.Disqualify(op) {
			return false
		}
		if !d.cfg.LoopSafe(op) {
			return false
		}
	}

	return true
}

// loop IDs are never zero. when the IDs wrap around the known table is
// cleared so that an ID can never refer to two different loops.
func (d *Detector) newID() uint16 {
	d.nextID++
	if d.nextID == 0 {
		d.known.Clear()
		d.records = make(map[uint16]bool)
		d.nextID = 1
	}
	return d.nextID
}

// Looping returns true if a loop has been confirmed and has not yet been
// exited.
func (d *Detector) Looping() bool {
	return d.looping
}

// Busy returns true if the current loop is safe to skip. Only meaningful if
// Looping() is true.
func (d *Detector) Busy() bool {
	return d.looping && d.busy
}

// Window returns the entries of the window that confirmed the current loop.
// Returns nil if there is no current loop.
func (d *Detector) Window() []Entry {
	if !d.looping {
		return nil
	}
	w := make([]Entry, len(d.window))
	copy(w, d.window)
	return w
}

// Known returns the table of known loops.
func (d *Detector) Known() *KnownLoops {
	return d.known
}

// Break forgets the current history without forgetting the known loops. The
// next Enter signal requires full generations to be recorded again. Used when
// the core's execution is interrupted by something the detector cannot see.
func (d *Detector) Break() {
	d.cursor = 0
	d.primed = false
	d.repeats = 0
	d.looping = false
	d.busy = false
}

// Reset the detector to its initial state, including the known loops table.
func (d *Detector) Reset() {
	d.Break()
	d.cur = 0
	d.window = d.window[:0]
	d.known.Clear()
	d.records = make(map[uint16]bool)
	d.nextID = 0
	d.loopID = 0
}
