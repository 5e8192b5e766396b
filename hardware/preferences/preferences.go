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

package preferences

import (
	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/paths"
	"github.com/jetsetilly/idleloop/prefs"
)

// Preferences defines and collates all the preference values used by the
// hardware emulation.
type Preferences struct {
	dsk *prefs.Disk

	// fast-forward tunables
	FastForward FastForwardPreferences
}

func (p *Preferences) String() string {
	if p.dsk == nil {
		return ""
	}
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the Preferences
// type. The preferences file is found with paths.ResourcePath() if the pth
// argument is empty.
func NewPreferences(pth string) (*Preferences, error) {
	p := NewDefaults()

	var err error

	if pth == "" {
		pth, err = paths.ResourcePath("", prefs.DefaultPrefsFile)
		if err != nil {
			return nil, err
		}
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	err = p.FastForward.add(p.dsk)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load(true)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// NewDefaults returns a Preferences instance with default values that is not
// backed by a preferences file. Load() and Save() do nothing. Useful for tests
// and for emulations that should not be affected by the user's preferences.
func NewDefaults() *Preferences {
	p := &Preferences{}
	p.FastForward.initialise()
	p.SetDefaults()
	return p
}

// SetDefaults reverts all settings to default values.
func (p *Preferences) SetDefaults() {
	p.FastForward.SetDefaults()
}

// Reset all hardware preferences to the default values and save them.
func (p *Preferences) Reset() error {
	p.SetDefaults()
	return p.Save()
}

// Load current hardware preferences from disk.
func (p *Preferences) Load() error {
	if p.dsk == nil {
		return nil
	}
	err := p.dsk.Load(false)
	if err != nil && !curated.Is(err, prefs.NoPrefsFile) {
		return err
	}
	return nil
}

// Save current hardware preferences to disk.
func (p *Preferences) Save() error {
	if p.dsk == nil {
		return nil
	}
	return p.dsk.Save()
}
