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

package events

import "fmt"

// CoreID identifies a core participating in the emulation.
type CoreID uint8

// MaxCores is the maximum number of cores supported. Structures indexed by
// CoreID are sized to this value.
const MaxCores = 8

// Names for the two cores of the reference system.
const (
	Master CoreID = 0
	Slave  CoreID = 1
)

func (id CoreID) String() string {
	return fmt.Sprintf("core%d", id)
}

// Bit returns the bit representing the core in a core mask.
func (id CoreID) Bit() uint32 {
	return 1 << id
}

// Valid returns true if the core is valid in a system of numCores cores.
func (id CoreID) Valid(numCores int) bool {
	return int(id) < numCores && int(id) < MaxCores
}

// Cores returns the list of CoreIDs for a system with numCores cores. Panics
// if numCores is out of range.
func Cores(numCores int) []CoreID {
	if numCores < 1 || numCores > MaxCores {
		panic(fmt.Sprintf("events: number of cores (%d) out of range", numCores))
	}
	c := make([]CoreID, numCores)
	for i := range c {
		c[i] = CoreID(i)
	}
	return c
}
