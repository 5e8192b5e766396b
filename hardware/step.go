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
	"github.com/jetsetilly/idleloop/hardware/idle/events"
)

// Step runs the core until it has retired one instruction or has been
// advanced by the fast-forward scheduler. Other cores do not run and the
// timeline does not advance. Intended for debugging.
func (m *Machine) Step(core events.CoreID) (int, error) {
	if err := m.checkCore(core); err != nil {
		return 0, err
	}
	if m.held&core.Bit() != 0 {
		return 0, nil
	}
	return m.Scheduler.Run(core, 1)
}
