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

package digest

import (
	"crypto/sha1"
	"fmt"
)

// Source of memory contents.
type Source interface {
	Bytes() []uint8
}

// Memory is an implementation of Digest for the contents of memory.
type Memory struct {
	digest   [sha1.Size]byte
	data     []byte
	captures int
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	return &Memory{}
}

// Hash implements digest.Digest interface.
func (dig *Memory) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements digest.Digest interface.
func (dig *Memory) ResetDigest() {
	clear(dig.digest[:])
	dig.captures = 0
}

// Captures returns the number of captures since the last reset.
func (dig *Memory) Captures() int {
	return dig.captures
}

// Capture the memory contents. The previous digest is placed at the head of
// the data so that fingerprints are chained.
func (dig *Memory) Capture(src Source) {
	b := src.Bytes()

	l := len(dig.digest) + len(b)
	if cap(dig.data) < l {
		dig.data = make([]byte, l)
	}
	dig.data = dig.data[:l]

	n := copy(dig.data, dig.digest[:])
	copy(dig.data[n:], b)

	dig.digest = sha1.Sum(dig.data)
	dig.captures++
}
