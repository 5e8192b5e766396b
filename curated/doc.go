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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function checks whether an error was created with a specific
// pattern. Patterns should be stored as package level constants, suitably
// named and commented, so that callers can test for them:
//
//	const UnknownCore = "poll: unknown core (%d)"
//
//	err := curated.Errorf(UnknownCore, 3)
//	if curated.Is(err, UnknownCore) {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the chain of values given to Errorf().
//
// The Error() function normalises the error chain so that it does not contain
// duplicate adjacent parts. Chains are thought of as parts separated by the
// sub-string ': '. Wrapping an error in a pattern that repeats the prefix of
// the wrapped error does not result in a stuttering message:
//
//	e := curated.Errorf("scenario: %v", curated.Errorf("scenario: line 10"))
//	fmt.Println(e) // scenario: line 10
//
// Curated errors cooperate with the errors package in the standard library.
// The first error value given to Errorf() is returned by Unwrap().
package curated
