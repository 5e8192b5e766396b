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

// Package paths contains functions to prepare paths to idleloop resources.
//
// The ResourcePath() function returns the supplied resource prepended with
// the appropriate config directory. If a directory named ".idleloop" exists in
// the current directory then that is the base path. Otherwise the user's
// config directory, as reported by os.UserConfigDir(), is used.
//
// On a modern Linux system the preferences file will be found at:
//
//	/home/user/.config/idleloop/preferences
package paths
