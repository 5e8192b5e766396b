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

package preferences

import (
	"fmt"

	"github.com/jetsetilly/idleloop/prefs"
)

// Limits on fast-forward preference values.
const (
	MinWindow     = 2
	MaxWindow     = 64
	MinHysteresis = 1
	MaxHysteresis = 1024
)

// FastForwardPreferences are the tunables of the idle loop detection and
// fast-forward scheduling.
type FastForwardPreferences struct {
	// master switch. if false every core executes normally
	Enabled prefs.Bool

	// number of retired instructions in each generation of the loop history
	Window prefs.Int

	// number of identical generation comparisons required before a loop is
	// trusted
	Hysteresis prefs.Int

	// a loop that has been seen before is trusted after a single comparison
	KnownLoops prefs.Bool

	// charge the host delay once for every fresh confirmation of a loop that
	// is not safe to skip. the delay never affects the emulated cycle count
	Throttle prefs.Bool

	// length of host delay in microseconds
	ThrottleAmount prefs.Int

	// maximum number of cycles to advance in a single scheduling
	// opportunity. zero means there is no limit other than the next
	// scheduled system event
	MaxSkip prefs.Int
}

// FastForwardLive is a copy of the fast-forward preferences as plain values.
// The scheduler reads these rather than the prefs values, which are
// comparatively expensive to access.
type FastForwardLive struct {
	Enabled        bool
	Window         int
	Hysteresis     int
	KnownLoops     bool
	Throttle       bool
	ThrottleAmount int
	MaxSkip        int
}

func (p *FastForwardPreferences) initialise() {
	rng := func(lo, hi int, name string) func(prefs.Value) error {
		return func(v prefs.Value) error {
			if n := v.(int); n < lo || n > hi {
				return fmt.Errorf("%s must be between %d and %d", name, lo, hi)
			}
			return nil
		}
	}
	nonNegative := func(name string) func(prefs.Value) error {
		return func(v prefs.Value) error {
			if v.(int) < 0 {
				return fmt.Errorf("%s cannot be negative", name)
			}
			return nil
		}
	}

	p.Window.SetHookPre(rng(MinWindow, MaxWindow, "window"))
	p.Hysteresis.SetHookPre(rng(MinHysteresis, MaxHysteresis, "hysteresis"))
	p.ThrottleAmount.SetHookPre(nonNegative("throttle amount"))
	p.MaxSkip.SetHookPre(nonNegative("max skip"))
}

func (p *FastForwardPreferences) add(dsk *prefs.Disk) error {
	entries := []struct {
		key string
		v   interface {
			fmt.Stringer
			Set(prefs.Value) error
			Get() prefs.Value
			Reset() error
		}
	}{
		{"idle.enabled", &p.Enabled},
		{"idle.window", &p.Window},
		{"idle.hysteresis", &p.Hysteresis},
		{"idle.knownloops", &p.KnownLoops},
		{"idle.throttle", &p.Throttle},
		{"idle.throttleamount", &p.ThrottleAmount},
		{"idle.maxskip", &p.MaxSkip},
	}

	for _, e := range entries {
		if err := dsk.Add(e.key, e.v); err != nil {
			return err
		}
	}

	return nil
}

// SetDefaults reverts all settings to default values.
func (p *FastForwardPreferences) SetDefaults() {
	p.Enabled.Set(true)
	p.Window.Set(12)
	p.Hysteresis.Set(2)
	p.KnownLoops.Set(true)
	p.Throttle.Set(false)
	p.ThrottleAmount.Set(50)
	p.MaxSkip.Set(0)
}

// Live returns the current values as a FastForwardLive instance.
func (p *FastForwardPreferences) Live() FastForwardLive {
	return FastForwardLive{
		Enabled:        p.Enabled.Get().(bool),
		Window:         p.Window.Get().(int),
		Hysteresis:     p.Hysteresis.Get().(int),
		KnownLoops:     p.KnownLoops.Get().(bool),
		Throttle:       p.Throttle.Get().(bool),
		ThrottleAmount: p.ThrottleAmount.Get().(int),
		MaxSkip:        p.MaxSkip.Get().(int),
	}
}
