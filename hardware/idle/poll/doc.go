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

// Package poll is the single source of truth for which cores are
// fast-forwarding and who must be told when a fast-forward must stop.
//
// The Registry holds at most one active Context per core. Hardware components
// that change state visible to a polling core call FireSysEvent() (or
// NotifyWrite() for memory writes) synchronously, at the moment of the change.
// Listeners registered for the core are called in registration order.
//
// The Registry does not decide which events invalidate which polls. That
// policy belongs to the listeners (see the events.Invalidates() function). A
// listener that invalidates a poll must call ResetPoller() before returning so
// that AnyPollerActive() is accurate as soon as FireSysEvent() returns.
//
// Misuse of the Registry is a programming error and causes a panic:
//
//   - adding a listener with a label already in use for the core
//   - SetPoller() for a core that already has an active poll
//   - reading the Context of a core that has no active poll
//   - any operation with a CoreID outside the range given to NewRegistry()
//
// The Registry has no locking. All cores are driven by a single goroutine.
package poll
