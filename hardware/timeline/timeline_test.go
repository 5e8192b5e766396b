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

package timeline_test

import (
	"testing"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/hardware/timeline"
	"github.com/jetsetilly/idleloop/test"
)

func TestSchedule(t *testing.T) {
	tl := timeline.NewTimeline()
	test.ExpectEquality(t, tl.CyclesUntilNextEvent(), timeline.NoEvents)

	var order []string
	test.DemandSuccess(t, tl.Schedule("audio", 10, func() { order = append(order, "audio") }))
	test.DemandSuccess(t, tl.Schedule("video", 25, func() { order = append(order, "video") }))

	err := tl.Schedule("audio", 5, nil)
	test.ExpectSuccess(t, curated.Is(err, timeline.DuplicateEvent))
	err = tl.Schedule("dma", 0, nil)
	test.ExpectSuccess(t, curated.Is(err, timeline.InvalidPeriod))

	test.ExpectEquality(t, tl.CyclesUntilNextEvent(), 10)
	tl.Advance(7)
	test.ExpectEquality(t, tl.CyclesUntilNextEvent(), 3)
	test.ExpectEquality(t, len(order), 0)

	// advance over more than one event
	tl.Advance(43)
	test.ExpectEquality(t, tl.Elapsed(), uint64(50))
	test.ExpectEquality(t, tl.Count("audio"), 5)
	test.ExpectEquality(t, tl.Count("video"), 2)

	// both events were due on cycle 50. order of scheduling is preserved
	test.DemandEquality(t, len(order), 7)
	test.ExpectEquality(t, order[5], "audio")
	test.ExpectEquality(t, order[6], "video")

	test.ExpectEquality(t, tl.String(), "elapsed=50 audio=10/10 video=25/25")
}

func TestCancel(t *testing.T) {
	tl := timeline.NewTimeline()

	var n int
	test.DemandSuccess(t, tl.Schedule("once", 5, func() {
		n++
		tl.Cancel("once")
	}))

	tl.Advance(100)
	test.ExpectEquality(t, n, 1)
	test.ExpectEquality(t, tl.CyclesUntilNextEvent(), timeline.NoEvents)
	test.ExpectFailure(t, tl.Cancel("once"))
}

func TestReset(t *testing.T) {
	tl := timeline.NewTimeline()
	test.DemandSuccess(t, tl.Schedule("timer", 8, nil))
	tl.Advance(13)
	test.ExpectEquality(t, tl.CyclesUntilNextEvent(), 3)
	tl.Reset()
	test.ExpectEquality(t, tl.CyclesUntilNextEvent(), 8)
	test.ExpectEquality(t, tl.Count("timer"), 0)
	test.ExpectEquality(t, tl.Elapsed(), uint64(0))
}
