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

// Package digest creates fingerprints of emulation state. A fingerprint is
// chained with the previous fingerprint so that a single hash represents a
// sequence of captures.
//
// Two emulations that produce the same sequence of hashes have arrived at the
// same observable state, whether or not idle loops were skipped.
package digest

// Digest implementations compute a hash of the emulation state, available as
// a string with Hash().
type Digest interface {
	Hash() string
	ResetDigest()
}
