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

// Package shared implements the memory shared by every core of the emulated
// machine.
//
// Memory is divided into regions. Each region has an event category that is
// fired, through the poll.Registry, for any core polling an address that a
// write touches. Addresses outside of any region use the SharedMemory
// category.
//
// Values wider than a byte are stored big-endian.
package shared
