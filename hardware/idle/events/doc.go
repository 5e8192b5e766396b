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

// Package events defines the data shared by the idle loop packages: the
// identity of a core, the categories of system event that can invalidate a
// poll, and the table that decides which events invalidate which kind of
// poll.
//
// The invalidation table is deliberately explicit. A new hardware component
// that needs to invalidate polls should fire one of the existing categories
// rather than add special cases to the listeners. Any category not found in
// the table invalidates every kind of poll.
package events
