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

// Package prefs facilitates the storage of preferential values in the
// emulation. Preference values are typed (Bool, Int) and can have hook
// functions that run before and after a change of value.
//
// Values are associated with a key by adding them to a Disk instance. The Disk
// type handles saving and loading to a preferences file. More than one Disk can
// share the same file: saving a Disk preserves the entries in the file that
// belong to other Disk instances.
//
// Preference values can also be set from the command line by pushing a string
// of the form "key::value; key::value" onto the command line stack. Values in
// the top group of the stack take precedence over values loaded from disk.
package prefs
