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

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/idleloop/environment"
	"github.com/jetsetilly/idleloop/hardware"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
	"github.com/jetsetilly/idleloop/modalflag"
	"github.com/jetsetilly/idleloop/test"
	"github.com/jetsetilly/idleloop/version"
)

func launchArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &strings.Builder{}
	md := &modalflag.Modes{Output: out}
	md.NewArgs(args)
	err := dispatch(context.Background(), md)
	return out.String(), err
}

func TestHelp(t *testing.T) {
	out, err := launchArgs(t, "-help")
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "available sub-modes: RUN, SCENARIO, PERFORMANCE"), out)
}

func TestVersion(t *testing.T) {
	out, err := launchArgs(t, "-version")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, out, version.Banner()+"\n")
}

func TestRunMode(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "spin.s")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("w: bra w\n"), 0o600))

	out, err := launchArgs(t, "run", "-defaults", "-cycles", "1000", fn)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "machine cycles=1000"), out)
	test.ExpectSuccess(t, strings.Contains(out, "core0: PC=$0600"), out)
	test.ExpectSuccess(t, strings.Contains(out, "BUSY_LOOP"), out)
	test.ExpectSuccess(t, strings.Contains(out, "[held]"), out)
}

// each program writes its own location and then loops forever
func twoPrograms(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	master := filepath.Join(dir, "master.s")
	slave := filepath.Join(dir, "slave.s")
	test.DemandSuccess(t, os.WriteFile(master, []byte("\tmovi r0, 1\n\tstw r0, $a0\nd: bra d\n"), 0o600))
	test.DemandSuccess(t, os.WriteFile(slave, []byte("\tmovi r0, 2\n\tstw r0, $b0\nd: bra d\n"), 0o600))
	return master, slave
}

func TestLoadPrograms(t *testing.T) {
	master, slave := twoPrograms(t)

	env := environment.NewEnvironment("test", nil)
	m, err := hardware.NewMachine(env, hardware.Config{})
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, loadPrograms(m, []string{master, slave}, 0x600, 0x100, 0))
	test.DemandSuccess(t, m.Run(200))

	for addr, want := range map[uint32]uint32{0xa0: 1, 0xb0: 2} {
		v, err := m.Mem.Read(addr, poll.Word)
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, v, want, addr)
	}

	// a stride smaller than the first program
	m, err = hardware.NewMachine(env, hardware.Config{})
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, loadPrograms(m, []string{master, slave}, 0x600, 4, 0))
	test.ExpectFailure(t, loadPrograms(m, []string{master, master}, 0x600, 0, 0))
}

func TestRunModeTwoPrograms(t *testing.T) {
	master, slave := twoPrograms(t)

	out, err := launchArgs(t, "run", "-defaults", "-cycles", "1000", master, slave)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "core0: PC=$0608"), out)
	test.ExpectSuccess(t, strings.Contains(out, "core1: PC=$0708"), out)

	out, err = launchArgs(t, "run", "-defaults", "-cycles", "1000", "-org", "$800", "-stride", "$40", master, slave)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "core1: PC=$0848"), out)

	_, err = launchArgs(t, "run", "-defaults", "-stride", "8", master, slave)
	test.ExpectFailure(t, err)
}

func TestRunModeWav(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "out.s")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("l: movi r0, 5\n\tout r0\n\tbra l\n"), 0o600))

	wav := filepath.Join(dir, "out.wav")
	_, err := launchArgs(t, "run", "-defaults", "-cycles", "700", "-wav", wav, fn)
	test.DemandSuccess(t, err)

	// every iteration is 1+4+2 cycles. a wav file has a 44 byte header and
	// two bytes per sample
	st, err := os.Stat(wav)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, st.Size(), int64(44+100*2))
}

func TestRunModeMailbox(t *testing.T) {
	out, err := launchArgs(t, "run", "-defaults", "-cycles", "20000")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "machine cycles=20000"), out)
	test.ExpectSuccess(t, strings.Contains(out, "interrupt="), out)
}

func TestRunModeErrors(t *testing.T) {
	_, err := launchArgs(t, "run", "-defaults", "-window", "1")
	test.ExpectFailure(t, err)

	_, err = launchArgs(t, "run", "-defaults", "-cores", "1")
	test.ExpectFailure(t, err)

	_, err = launchArgs(t, "run", "-defaults", filepath.Join(t.TempDir(), "missing.s"))
	test.ExpectFailure(t, err)

	fn := filepath.Join(t.TempDir(), "bad.s")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("foo r0\n"), 0o600))
	_, err = launchArgs(t, "run", "-defaults", fn)
	test.ExpectFailure(t, err)
}

func TestScenarioMode(t *testing.T) {
	out, err := launchArgs(t, "scenario", "-defaults", filepath.Join("scenario", "testdata", "scenario_a.lua"))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.HasSuffix(out, "scenario_a.lua: 5 expectations met\n"), out)

	_, err = launchArgs(t, "scenario", "-defaults")
	test.ExpectFailure(t, err)
}

func TestPerformanceMode(t *testing.T) {
	out, err := launchArgs(t, "performance", "-cycles", "20000")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "fast-forward off"), out)
	test.ExpectSuccess(t, strings.Contains(out, "fast-forward on"), out)

	_, err = launchArgs(t, "performance", "-profile", "disk")
	test.ExpectFailure(t, err)
}
