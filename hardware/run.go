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

package hardware

import (
	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/govern"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
)

// Run the machine for the specified number of cycles.
func (m *Machine) Run(cycles int) error {
	for cycles > 0 {
		n, err := m.slice(cycles)
		if err != nil {
			return err
		}
		cycles -= n
	}
	return nil
}

// RunUntil runs the machine until the continueCheck function returns the
// Ending state. The continueCheck function is called after every slice.
func (m *Machine) RunUntil(continueCheck func() (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func() (govern.State, error) { return govern.Running, nil }
	}

	var err error

	state := govern.Running
	for state != govern.Ending {
		switch state {
		case govern.Running:
			if _, err := m.slice(m.cfg.Slice); err != nil {
				return err
			}
		case govern.Paused:
		default:
			return curated.Errorf("hardware: unsupported emulation state (%s) in RunUntil() function", state)
		}

		state, err = continueCheck()
		if err != nil {
			return err
		}
	}

	return nil
}

// run every core for one slice of no more than limit cycles. the slice is
// shortened so that it ends on the next event on the timeline. returns the
// length of the slice.
func (m *Machine) slice(limit int) (int, error) {
	n := m.cfg.Slice
	if n > limit {
		n = limit
	}
	if h := m.Timeline.CyclesUntilNextEvent(); h < n {
		n = h
	}

	for _, id := range events.Cores(m.cfg.NumCores) {
		if err := m.runCore(id, n); err != nil {
			return 0, err
		}
	}

	m.Timeline.Advance(n)
	m.Cycles += uint64(n)

	return n, nil
}

// give the core its share of the slice. a core that overran the previous
// slice is owed fewer cycles in this one
func (m *Machine) runCore(id events.CoreID, n int) error {
	m.credit[id] += n
	if m.credit[id] <= 0 {
		return nil
	}

	if m.held&id.Bit() != 0 {
		m.CPUs[id].AdvanceVirtualCycles(m.credit[id])
		m.credit[id] = 0
		return nil
	}

	used, err := m.Scheduler.Run(id, m.credit[id])
	m.credit[id] -= used
	return err
}
