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

// the address space is partitioned into areas of this many addresses. areas
// are only allocated when an address inside them is tagged.
const (
	areaShift = 12
	AreaSize  = 1 << areaShift
	areaMask  = AreaSize - 1
)

type area [AreaSize]uint16

// KnownLoops is a sparse map of address to loop ID. A loop ID of zero means
// the address is not part of a known loop.
type KnownLoops struct {
	areas map[uint32]*area
}

// NewKnownLoops is the preferred method of initialisation for the KnownLoops
// type.
func NewKnownLoops() *KnownLoops {
	return &KnownLoops{
		areas: make(map[uint32]*area),
	}
}

// Tag every address with the loop ID. An ID of zero removes the address from
// any known loop.
func (k *KnownLoops) Tag(addrs []uint32, id uint16) {
	for _, a := range addrs {
		ar, ok := k.areas[a>>areaShift]
		if !ok {
			if id == 0 {
				continue
			}
			ar = &area{}
			k.areas[a>>areaShift] = ar
		}
		ar[a&areaMask] = id
	}
}

// Lookup returns the loop ID of the address and true if the address is part
// of a known loop.
func (k *KnownLoops) Lookup(addr uint32) (uint16, bool) {
	ar, ok := k.areas[addr>>areaShift]
	if !ok {
		return 0, false
	}
	id := ar[addr&areaMask]
	return id, id != 0
}

// Clear forgets all known loops.
func (k *KnownLoops) Clear() {
	k.areas = make(map[uint32]*area)
}

// Areas returns the number of areas allocated.
func (k *KnownLoops) Areas() int {
	return len(k.areas)
}
