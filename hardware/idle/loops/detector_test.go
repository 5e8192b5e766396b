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

package loops_test

import (
	"testing"

	"github.com/jetsetilly/idleloop/hardware/idle/loops"
	"github.com/jetsetilly/idleloop/test"
)

// opcodes used in the tests. anything below 0x100 is loop-safe and 0xdead
// is disqualified
const (
	opLoad     = 0x01
	opCompare  = 0x02
	opBranch   = 0x03
	opStore    = 0x100
	opBlockCpy = 0xdead
)

func loopSafe(op uint32) bool {
	return op < 0x100
}

func disqualify(op uint32) bool {
	return op == opBlockCpy
}

func newDetector(window int, hysteresis int, known bool) *loops.Detector {
	return loops.NewDetector(loops.Config{
		Window:     window,
		Hysteresis: hysteresis,
		KnownLoops: known,
		LoopSafe:   loopSafe,
		Disqualify: disqualify,
	})
}

// feed the body of a loop to the detector the specified number of times.
// returns every signal other than NoSignal along with the number of
// instructions observed before the signal
type signal struct {
	sig loops.Signal
	at  int
}

func feed(d *loops.Detector, body []loops.Entry, iterations int) []signal {
	var s []signal
	n := 0
	for i := 0; i < iterations; i++ {
		for _, e := range body {
			n++
			if sig := d.Observe(e.Addr, e.Opcode); sig.Kind != loops.NoSignal {
				s = append(s, signal{sig: sig, at: n})
			}
		}
	}
	return s
}

var pollLoop = []loops.Entry{
	{Addr: 0x600, Opcode: opLoad},
	{Addr: 0x602, Opcode: opCompare},
	{Addr: 0x604, Opcode: opBranch},
}

// P1
func TestEnterAfterRepeats(t *testing.T) {
	// with a hysteresis of one, two identical generations are enough
	d := newDetector(12, 1, false)

	// a single generation is not enough
	s := feed(d, pollLoop, 4)
	test.ExpectEquality(t, len(s), 0)

	s = feed(d, pollLoop, 4)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Kind, loops.Enter)
	test.ExpectEquality(t, s[0].sig.Busy, true)
	test.ExpectEquality(t, s[0].at, 12)
	test.ExpectSuccess(t, d.Looping())

	// no further signals while the loop continues
	s = feed(d, pollLoop, 100)
	test.ExpectEquality(t, len(s), 0)
}

func TestDefaultHysteresis(t *testing.T) {
	d := newDetector(12, 2, false)

	// two generations, one comparison
	s := feed(d, pollLoop, 8)
	test.ExpectEquality(t, len(s), 0)

	// third generation, second comparison
	s = feed(d, pollLoop, 4)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Kind, loops.Enter)
}

func TestLargeHysteresis(t *testing.T) {
	const hysteresis = 1024
	d := newDetector(12, hysteresis, false)

	// loop body is three instructions so four iterations in a generation.
	// the first generation is not compared
	s := feed(d, pollLoop, 4*hysteresis)
	test.ExpectEquality(t, len(s), 0)

	s = feed(d, pollLoop, 4)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Kind, loops.Enter)
}

// the phase of the loop relative to the generation boundary does not matter
func TestPhase(t *testing.T) {
	d := newDetector(12, 1, false)
	d.Observe(0x500, opLoad)
	d.Observe(0x502, opLoad)
	s := feed(d, pollLoop, 12)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Kind, loops.Enter)
}

func TestNonRepeatingStream(t *testing.T) {
	d := newDetector(12, 1, false)
	for i := 0; i < 10000; i++ {
		sig := d.Observe(uint32(i*2), opLoad)
		test.ExpectEquality(t, sig.Kind, loops.NoSignal)
	}
	test.ExpectFailure(t, d.Looping())
}

// a loop of five instructions does not divide a window of twelve
func TestLoopLengthMustDivideWindow(t *testing.T) {
	body := []loops.Entry{
		{Addr: 0x600, Opcode: opLoad},
		{Addr: 0x602, Opcode: opLoad},
		{Addr: 0x604, Opcode: opLoad},
		{Addr: 0x606, Opcode: opCompare},
		{Addr: 0x608, Opcode: opBranch},
	}

	d := newDetector(12, 1, false)
	s := feed(d, body, 1000)
	test.ExpectEquality(t, len(s), 0)

	// but it does divide a window of ten
	d = newDetector(10, 1, false)
	s = feed(d, body, 10)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Kind, loops.Enter)
}

// P2 and scenario D
func TestClassification(t *testing.T) {
	withStore := []loops.Entry{
		{Addr: 0x600, Opcode: opLoad},
		{Addr: 0x602, Opcode: opStore},
		{Addr: 0x604, Opcode: opBranch},
	}
	withBlockCopy := []loops.Entry{
		{Addr: 0x600, Opcode: opLoad},
		{Addr: 0x602, Opcode: opBlockCpy},
		{Addr: 0x604, Opcode: opBranch},
	}

	for _, tc := range []struct {
		name string
		body []loops.Entry
		busy bool
	}{
		{"poll", pollLoop, true},
		{"store", withStore, false},
		{"block copy", withBlockCopy, false},
	} {
		d := newDetector(12, 2, false)
		s := feed(d, tc.body, 4000)
		test.DemandEquality(t, len(s), 1, tc.name)
		test.ExpectEquality(t, s[0].sig.Kind, loops.Enter, tc.name)
		test.ExpectEquality(t, s[0].sig.Busy, tc.busy, tc.name)
		test.ExpectEquality(t, d.Busy(), tc.busy, tc.name)
	}
}

// a disqualifying opcode overrides the loop-safe predicate
func TestDisqualifyOverridesLoopSafe(t *testing.T) {
	d := loops.NewDetector(loops.Config{
		Window:     12,
		Hysteresis: 1,
		LoopSafe:   func(_ uint32) bool { return true },
		Disqualify: func(op uint32) bool { return op == opCompare },
	})
	s := feed(d, pollLoop, 8)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Busy, false)
}

func TestNoLoopSafePredicate(t *testing.T) {
	d := loops.NewDetector(loops.Config{Window: 12, Hysteresis: 1})
	s := feed(d, pollLoop, 8)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Busy, false)
}

func TestExit(t *testing.T) {
	d := newDetector(12, 1, false)
	s := feed(d, pollLoop, 8)
	test.DemandEquality(t, len(s), 1)
	id := s[0].sig.LoopID

	// leave the loop
	s = feed(d, []loops.Entry{{Addr: 0x606, Opcode: opLoad}}, 12)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Kind, loops.Exit)
	test.ExpectEquality(t, s[0].sig.LoopID, id)
	test.ExpectFailure(t, d.Looping())
	test.ExpectEquality(t, len(d.Window()), 0)
}

func TestWindow(t *testing.T) {
	d := newDetector(6, 1, false)
	feed(d, pollLoop, 4)
	w := d.Window()
	test.DemandEquality(t, len(w), 6)
	for i := range w {
		test.ExpectEquality(t, w[i], pollLoop[i%3])
	}
}

func TestKnownLoops(t *testing.T) {
	other := []loops.Entry{{Addr: 0x700, Opcode: opLoad}, {Addr: 0x702, Opcode: opBranch}}

	d := newDetector(12, 4, true)

	s := feed(d, pollLoop, 4*5)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Known, false)
	id := s[0].sig.LoopID

	id2, ok := d.Known().Lookup(0x602)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id2, id)
	_, ok = d.Known().Lookup(0x606)
	test.ExpectFailure(t, ok)

	// leave the loop and come back. the loop is confirmed after one
	// comparison rather than four
	feed(d, other, 6*5)
	d.Break()
	s = feed(d, pollLoop, 8)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Kind, loops.Enter)
	test.ExpectEquality(t, s[0].sig.Known, true)
	test.ExpectEquality(t, s[0].sig.LoopID, id)
	test.ExpectEquality(t, s[0].sig.Busy, true)

	// without the known loops option the full hysteresis applies
	d = newDetector(12, 4, false)
	feed(d, pollLoop, 4*5)
	d.Break()
	s = feed(d, pollLoop, 8)
	test.ExpectEquality(t, len(s), 0)
}

func TestReset(t *testing.T) {
	d := newDetector(12, 1, true)
	feed(d, pollLoop, 8)
	test.ExpectSuccess(t, d.Looping())
	test.ExpectEquality(t, d.Known().Areas(), 1)

	d.Reset()
	test.ExpectFailure(t, d.Looping())
	test.ExpectEquality(t, d.Known().Areas(), 0)

	s := feed(d, pollLoop, 8)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].sig.Known, false)
	test.ExpectEquality(t, s[0].sig.LoopID, uint16(1))
}

func TestInvalidConfig(t *testing.T) {
	test.ExpectPanic(t, func() { loops.NewDetector(loops.Config{Window: 1, Hysteresis: 1}) })
	test.ExpectPanic(t, func() { loops.NewDetector(loops.Config{Window: 12, Hysteresis: 0}) })
}
