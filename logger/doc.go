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

// Package logger is the logging package used by the emulation. Log entries are
// made up of a tag and a detail string. Adjacent entries with the same tag and
// detail are collapsed into a single entry with a repeat count.
//
// There is no package level log. Each emulation session owns a Logger, usually
// through the environment package, so that more than one emulation can run in
// the same process without their logs being interleaved.
//
// Every logging request carries a Permission. Emulations that should not be
// making log entries (eg. performance runs or tests) can refuse permission.
package logger
