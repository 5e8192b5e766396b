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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It handles program modes (and sub-modes) and allows different flags
// for each mode.
//
// Arguments are given to NewArgs() and parsed with Parse(). Sub-modes are
// added before parsing with AddSubModes(), the first sub-mode being the
// default. After a successful Parse() the selected mode is returned by Mode()
// and the complete route through the modes by Path().
//
//	md := &modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "SCENARIO", "PERFORMANCE")
//	p, err := md.Parse()
//
// Once a mode has been selected, NewMode() prepares the Modes instance for the
// flags of that mode. The remaining arguments are then parsed with another call
// to Parse().
//
//	md.NewMode()
//	cycles := md.AddInt("cycles", 1000000, "number of cycles to run")
//	org := md.AddAddress("org", 0x600, "origin of the assembled program")
//	p, err = md.Parse()
//
// All sub-mode comparisons are case insensitive.
package modalflag
