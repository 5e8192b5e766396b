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

package preferences_test

import (
	"path/filepath"
	"testing"

	"github.com/jetsetilly/idleloop/hardware/preferences"
	"github.com/jetsetilly/idleloop/test"
)

func TestDefaults(t *testing.T) {
	p := preferences.NewDefaults()
	live := p.FastForward.Live()
	test.ExpectEquality(t, live.Enabled, true)
	test.ExpectEquality(t, live.Window, 12)
	test.ExpectEquality(t, live.Hysteresis, 2)
	test.ExpectEquality(t, live.KnownLoops, true)
	test.ExpectEquality(t, live.Throttle, false)
	test.ExpectEquality(t, live.MaxSkip, 0)

	// no disk so these do nothing
	test.ExpectSuccess(t, p.Save())
	test.ExpectSuccess(t, p.Load())
}

func TestLimits(t *testing.T) {
	p := preferences.NewDefaults()
	test.ExpectFailure(t, p.FastForward.Window.Set(1))
	test.ExpectFailure(t, p.FastForward.Window.Set(preferences.MaxWindow+1))
	test.ExpectSuccess(t, p.FastForward.Window.Set(6))
	test.ExpectFailure(t, p.FastForward.Hysteresis.Set(0))
	test.ExpectSuccess(t, p.FastForward.Hysteresis.Set(preferences.MaxHysteresis))
	test.ExpectFailure(t, p.FastForward.MaxSkip.Set(-1))

	live := p.FastForward.Live()
	test.ExpectEquality(t, live.Window, 6)
	test.ExpectEquality(t, live.Hysteresis, preferences.MaxHysteresis)
}

func TestPersistence(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "preferences")

	p, err := preferences.NewPreferences(fn)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, p.FastForward.Hysteresis.Set(5))
	test.ExpectSuccess(t, p.FastForward.Enabled.Set(false))
	test.DemandSuccess(t, p.Save())

	q, err := preferences.NewPreferences(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.FastForward.Live().Hysteresis, 5)
	test.ExpectEquality(t, q.FastForward.Live().Enabled, false)

	test.ExpectSuccess(t, q.Reset())
	test.ExpectEquality(t, q.FastForward.Live().Enabled, true)
}
