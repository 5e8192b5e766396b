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
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/jetsetilly/idleloop/environment"
	"github.com/jetsetilly/idleloop/govern"
	"github.com/jetsetilly/idleloop/hardware"
	"github.com/jetsetilly/idleloop/hardware/cpu/spin"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/fastforward"
	"github.com/jetsetilly/idleloop/hardware/preferences"
	"github.com/jetsetilly/idleloop/hardware/programs"
	"github.com/jetsetilly/idleloop/logger"
	"github.com/jetsetilly/idleloop/modalflag"
	"github.com/jetsetilly/idleloop/paths"
	"github.com/jetsetilly/idleloop/performance"
	"github.com/jetsetilly/idleloop/prefs"
	"github.com/jetsetilly/idleloop/scenario"
	"github.com/jetsetilly/idleloop/statsview"
	"github.com/jetsetilly/idleloop/wavwriter"
)

// number of cycles run between checks for cancellation.
const runChunk = 10000

// origin of the first program assembled in the RUN mode and the distance
// between the origins of consecutive programs.
const (
	defaultOrigin = 0x600
	defaultStride = 0x100
)

// flags common to the RUN and SCENARIO modes.
type machineFlags struct {
	fastforward *bool
	window      *int
	hysteresis  *int
	knownLoops  *bool
	throttle    *bool
	maxSkip     *int
	prefs       *string
	defaults    *bool
	log         *bool
	cores       *int
}

func addMachineFlags(md *modalflag.Modes) *machineFlags {
	return &machineFlags{
		fastforward: md.AddBool("fastforward", true, "skip idle loops"),
		window:      md.AddInt("window", 12, "instructions in each generation of the loop history"),
		hysteresis:  md.AddInt("hysteresis", 2, "matching generations required before a loop is trusted"),
		knownLoops:  md.AddBool("knownloops", true, "trust previously seen loops after a single match"),
		throttle:    md.AddBool("throttle", false, "delay the host when a loop cannot be skipped"),
		maxSkip:     md.AddInt("maxskip", 0, "maximum cycles skipped at once. zero means no limit"),
		prefs:       md.AddString("prefs", "", "preference overrides. eg. \"idle.window::8; idle.throttle::true\""),
		defaults:    md.AddBool("defaults", false, "use default preferences and do not read or write the preferences file"),
		log:         md.AddBool("log", false, "echo log to stdout"),
		cores:       md.AddInt("cores", hardware.DefaultNumCores, "number of cores"),
	}
}

// the names of the flags that set a preference directly.
func (f *machineFlags) overrides(p *preferences.Preferences) []struct {
	flag  string
	pref  interface{ Set(prefs.Value) error }
	value prefs.Value
} {
	return []struct {
		flag  string
		pref  interface{ Set(prefs.Value) error }
		value prefs.Value
	}{
		{"fastforward", &p.FastForward.Enabled, *f.fastforward},
		{"window", &p.FastForward.Window, *f.window},
		{"hysteresis", &p.FastForward.Hysteresis, *f.hysteresis},
		{"knownloops", &p.FastForward.KnownLoops, *f.knownLoops},
		{"throttle", &p.FastForward.Throttle, *f.throttle},
		{"maxskip", &p.FastForward.MaxSkip, *f.maxSkip},
	}
}

// newEnvironment creates the environment for the main emulation. flags that
// were specified on the command line take priority over the preferences file
// and the -prefs overrides.
func (f *machineFlags) newEnvironment(md *modalflag.Modes) (*environment.Environment, error) {
	var p *preferences.Preferences

	if *f.defaults {
		p = preferences.NewDefaults()
	} else {
		prefs.PushCommandLineStack(*f.prefs)

		var err error
		p, err = preferences.NewPreferences("")
		unused := prefs.PopCommandLineStack()
		if err != nil {
			return nil, errors.Wrap(err, "preferences")
		}
		if unused != "" {
			fmt.Fprintf(md.Output, "* unused preferences: %s\n", unused)
		}
	}

	for _, o := range f.overrides(p) {
		if md.Visited(o.flag) {
			if err := o.pref.Set(o.value); err != nil {
				return nil, errors.Wrapf(err, "-%s", o.flag)
			}
		}
	}

	env := environment.NewEnvironment(environment.MainEmulation, p)
	if *f.log {
		env.Log.SetEcho(logOutput(md.Output))
	}

	return env, nil
}

// logOutput returns a colorized writer if the output is a terminal.
func logOutput(output io.Writer) io.Writer {
	if f, ok := output.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return logger.NewColorizer(output)
	}
	return output
}

func run(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	mf := addMachineFlags(md)
	cycles := md.AddInt("cycles", 1000000, "number of cycles to run. zero runs until interrupted")
	org := md.AddAddress("org", defaultOrigin, "origin of the first core's program")
	stride := md.AddAddress("stride", defaultStride, "distance between the origins of consecutive programs")
	vector := md.AddAddress("vector", 0, "interrupt vector of every core. zero leaves the vector disabled")
	timer := md.AddInt("timer", 0, "period of the timer interrupt raised on the last core. zero means no timer")
	memviz := md.AddBool("memviz", false, "write a graphviz file of the poll registry after the run")
	wavFile := md.AddString("wav", "", "record the output port of the first core to a WAV file")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (available: %v)", statsview.Available()))
	md.AdditionalHelp("Each argument is the assembly file for a core, in core order. Cores without a\n" +
		"program are held in reset. Programs must not overlap. With no arguments the\n" +
		"mailbox demonstration is run.")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	env, err := mf.newEnvironment(md)
	if err != nil {
		return err
	}

	m, err := hardware.NewMachine(env, hardware.Config{NumCores: *mf.cores})
	if err != nil {
		return err
	}
	m.Scheduler.SetThrottle(fastforward.SleepThrottle{})

	if len(md.RemainingArgs()) == 0 {
		if m.Config().NumCores < 2 {
			return fmt.Errorf("mailbox demonstration requires two cores")
		}
		err = programs.LoadMailbox(m, programs.MailboxConfig{
			Consumer: events.Master,
			Producer: events.Slave,
		})
		if err != nil {
			return err
		}
	} else {
		err = loadPrograms(m, md.RemainingArgs(), *org, *stride, *vector)
		if err != nil {
			return err
		}
	}

	if *timer > 0 {
		last := events.CoreID(m.Config().NumCores - 1)
		err = m.ScheduleInterrupt("timer", *timer, last)
		if err != nil {
			return err
		}
	}

	if *stats {
		statsview.Launch(md.Output, "")
	}

	var aw *wavwriter.WavWriter
	if *wavFile != "" {
		aw, err = wavwriter.New(*wavFile, 0)
		if err != nil {
			return err
		}
	}

	err = runMachine(ctx, m, *cycles, aw)
	if err != nil {
		return err
	}

	if aw != nil {
		err = aw.End(env)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(md.Output, m.Snapshot())
	fmt.Fprintln(md.Output, m.Diagnostics)

	if *memviz {
		fn := paths.UniqueFilename("memviz", "", ".dot")
		f, err := os.Create(fn)
		if err != nil {
			return errors.Wrap(err, "memviz")
		}
		defer f.Close()
		m.Memviz(f)
		fmt.Fprintf(md.Output, "poll registry written to %s\n", fn)
	}

	return nil
}

// assemble and load each file in turn. the program for core n is assembled
// at org+n*stride. cores without a program are held in reset.
func loadPrograms(m *hardware.Machine, files []string, org uint32, stride uint32, vector uint32) error {
	cores := events.Cores(m.Config().NumCores)
	if len(files) > len(cores) {
		return fmt.Errorf("too many programs (%d) for the number of cores (%d)", len(files), len(cores))
	}

	loaded := make([]spin.Program, 0, len(files))

	for i, id := range cores {
		if i >= len(files) {
			if err := m.Hold(id); err != nil {
				return err
			}
			continue
		}

		src, err := os.ReadFile(files[i])
		if err != nil {
			return errors.Wrap(err, "load")
		}

		prg, err := spin.Assemble(org+uint32(i)*stride, string(src))
		if err != nil {
			return errors.Wrap(err, files[i])
		}

		if len(prg.Words) > 0 {
			for j, p := range loaded {
				if len(p.Words) > 0 && prg.Origin <= p.Memtop() && p.Origin <= prg.Memtop() {
					return fmt.Errorf("%s ($%04x-$%04x) overlaps %s ($%04x-$%04x)",
						files[i], prg.Origin, prg.Memtop(), files[j], p.Origin, p.Memtop())
				}
			}
		}
		loaded = append(loaded, prg)

		if err := m.Load(id, prg); err != nil {
			return err
		}

		if vector != 0 {
			if err := m.SetVector(id, vector); err != nil {
				return err
			}
		}
	}

	return nil
}

// run the machine for the number of cycles or until the context is cancelled.
// zero cycles means run until cancelled. output from the first core is
// collected by the WavWriter if it is not nil.
func runMachine(ctx context.Context, m *hardware.Machine, cycles int, aw *wavwriter.WavWriter) error {
	collect := func() {
		if aw != nil {
			aw.Write(m.CPUs[events.Master].Output)
		}
		m.CPUs[events.Master].Output = m.CPUs[events.Master].Output[:0]
	}

	if cycles == 0 {
		return m.RunUntil(func() (govern.State, error) {
			collect()
			if ctx.Err() != nil {
				return govern.Ending, nil
			}
			return govern.Running, nil
		})
	}

	for cycles > 0 && ctx.Err() == nil {
		n := min(cycles, runChunk)
		if err := m.Run(n); err != nil {
			return err
		}
		collect()
		cycles -= n
	}

	return nil
}

func scenarios(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	mf := addMachineFlags(md)
	md.AdditionalHelp("Each argument is a Lua scenario script. Every script is run on a new machine.")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) == 0 {
		return fmt.Errorf("scenario script required")
	}

	env, err := mf.newEnvironment(md)
	if err != nil {
		return err
	}

	for _, fn := range md.RemainingArgs() {
		m, err := hardware.NewMachine(env, hardware.Config{NumCores: *mf.cores})
		if err != nil {
			return err
		}

		s := scenario.NewScenario(m, md.Output)
		err = s.RunFile(ctx, fn)
		n := s.Expectations()
		s.Close()
		if err != nil {
			return err
		}

		fmt.Fprintf(md.Output, "%s: %d expectations met\n", fn, n)
	}

	return nil
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	cycles := md.AddInt("cycles", performance.DefaultCycles, "number of cycles to run")
	period := md.AddInt("period", 500, "period of the producer's timer interrupt")
	window := md.AddInt("window", 0, "instructions in each generation of the loop history. zero means default")
	hysteresis := md.AddInt("hysteresis", 0, "matching generations required before a loop is trusted. zero means default")
	profile := md.AddString("profile", "none", "run with profiling: CPU, MEM, TRACE, ALL (comma separated)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	prf, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	_, _, err = performance.Compare(md.Output, prf, performance.Config{
		Cycles:     *cycles,
		Period:     *period,
		Window:     *window,
		Hysteresis: *hysteresis,
	})
	return err
}
