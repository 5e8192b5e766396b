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

// Package environment provides the context for an emulation session. Every
// component that needs access to preferences or the log is given the
// Environment at construction. There are no package level singletons so more
// than one emulation can run in the same process, for example in parallel
// tests.
package environment

import (
	"github.com/jetsetilly/idleloop/hardware/preferences"
	"github.com/jetsetilly/idleloop/logger"
)

// Label is used to name the environment
type Label string

// MainEmulation is the label used for the main emulation
const MainEmulation = Label("")

// maximum number of entries kept by the environment's log.
const maxLogEntries = 512

// Environment is used to provide context for an emulation. Particularly useful
// when using multiple emulations
type Environment struct {
	Label Label

	// the emulation preferences
	Prefs *preferences.Preferences

	// log for the emulation
	Log *logger.Logger
}

// NewEnvironment is the preferred method of initialisation for the Environment type.
//
// The prefs argument can be nil, in which case default preferences that are
// not backed by a preferences file are used. Providing a non-nil value allows
// the preferences of more than one emulation to be synchronised.
func NewEnvironment(label Label, prefs *preferences.Preferences) *Environment {
	if prefs == nil {
		prefs = preferences.NewDefaults()
	}

	return &Environment{
		Label: label,
		Prefs: prefs,
		Log:   logger.NewLogger(maxLogEntries),
	}
}

// Normalise ensures the environment is in an known default state. Useful for
// regression testing where the initial state must be the same for every run of
// the test.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
}

// AllowLogging implements the logger.Permission interface. Only the main
// emulation is allowed to create log entries.
func (env *Environment) AllowLogging() bool {
	return env.IsMainEmulation()
}

// IsMainEmulation returns true if the environment is intended for the main
// emulation in the system
func (env *Environment) IsMainEmulation() bool {
	return env.Label == MainEmulation
}

// IsEmulation checks the emulation label and returns true if it matches
func (env *Environment) IsEmulation(label Label) bool {
	return env.Label == label
}
