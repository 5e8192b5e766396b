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

package scenario

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/hardware"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// Sentinal error patterns.
const (
	ScenarioError     = "scenario: %s: %v"
	ExpectationFailed = "expectation failed: %s %s"
)

// Scenario is a Lua state attached to a Machine.
type Scenario struct {
	m *hardware.Machine
	L *lua.LState

	// log messages are also written to echo if it is not nil
	echo io.Writer

	// the error that caused the script to stop. more detailed than the
	// error returned by the Lua interpreter
	cause error

	expectations int
}

// NewScenario is the preferred method of initialisation for the Scenario
// type. The echo argument can be nil.
func NewScenario(m *hardware.Machine, echo io.Writer) *Scenario {
	s := &Scenario{
		m:    m,
		echo: echo,
		L:    lua.NewState(lua.Options{SkipOpenLibs: true}),
	}

	// scripts have no access to the filesystem or the operating system
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		s.L.Push(s.L.NewFunction(lib.fn))
		s.L.Push(lua.LString(lib.name))
		s.L.Call(1, 0)
	}
	for _, g := range []string{"dofile", "loadfile", "require", "module"} {
		s.L.SetGlobal(g, lua.LNil)
	}

	s.bind()

	return s
}

// Close the Lua state.
func (s *Scenario) Close() {
	s.L.Close()
}

// Expectations returns the number of expectations that have been met.
func (s *Scenario) Expectations() int {
	return s.expectations
}

// Run the script. The name is used in error messages. The script is stopped
// if the context is cancelled.
func (s *Scenario) Run(ctx context.Context, name string, src string) error {
	s.cause = nil
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	fn, err := s.L.Load(strings.NewReader(src), name)
	if err != nil {
		return curated.Errorf(ScenarioError, name, errors.Wrap(err, "syntax"))
	}

	s.L.Push(fn)
	err = s.L.PCall(0, lua.MultRet, nil)
	if err != nil {
		if s.cause != nil {
			return curated.Errorf(ScenarioError, name, s.cause)
		}
		return curated.Errorf(ScenarioError, name, errors.Wrap(err, "lua"))
	}

	return nil
}

// RunFile loads the script from the named file and runs it.
func (s *Scenario) RunFile(ctx context.Context, filename string) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return curated.Errorf(ScenarioError, filepath.Base(filename), err)
	}
	return s.Run(ctx, filepath.Base(filename), string(b))
}

// fail the script with a Go error. the function does not return.
func (s *Scenario) fail(fn string, err error) {
	s.cause = errors.Wrapf(err, "%s()", fn)
	s.L.RaiseError("%s", s.cause.Error())
}

func (s *Scenario) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	env := s.m.Env()
	env.Log.Log(env, "scenario", msg)
	if s.echo != nil {
		io.WriteString(s.echo, msg)
		io.WriteString(s.echo, "\n")
	}
}
