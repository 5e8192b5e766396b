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

package poll

import (
	"io"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
)

// the snapshot types contain only plain data. listener functions are
// represented by their labels.
type coreSnapshot struct {
	Core      string
	Listeners []string
	Poller    *Context
}

type registrySnapshot struct {
	NumCores int
	Active   uint32
	Cores    []coreSnapshot
}

func (r *Registry) snapshot() *registrySnapshot {
	s := &registrySnapshot{
		NumCores: r.numCores,
		Active:   r.active,
	}

	for c := 0; c < r.numCores; c++ {
		cs := coreSnapshot{
			Core: events.CoreID(c).String(),
		}
		for _, l := range r.listeners[c] {
			cs.Listeners = append(cs.Listeners, l.label)
		}
		if r.active&(1<<c) != 0 {
			p := r.pollers[c]
			cs.Poller = &p
		}
		s.Cores = append(s.Cores, cs)
	}

	return s
}

// Memviz writes a graphviz representation of the registry's listeners and
// active polls to the io.Writer.
func (r *Registry) Memviz(w io.Writer) {
	memviz.Map(w, r.snapshot())
}
