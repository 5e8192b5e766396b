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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect*() functions report a failure with t.Errorf() and allow the test
// to continue. The Demand*() functions report with t.Fatalf() and should be
// used when the result is relied upon by later parts of the test. For example,
// when the length of a slice must be correct before iterating over it.
//
// ExpectSuccess() and ExpectFailure() interpret the value according to its
// type. A bool is successful if it is true and an error is successful if it is
// nil. The nil type is considered a success because of how errors usually work.
//
// ExpectPanic() runs a function and checks that it panics. Used to test
// functions that treat misuse as a programming error.
//
// The RingWriter and CompareWriter types implement io.Writer and should be used
// to capture output for comparison.
package test
