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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/digest"
	"github.com/jetsetilly/idleloop/environment"
	"github.com/jetsetilly/idleloop/hardware"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
	"github.com/jetsetilly/idleloop/hardware/programs"
)

// Sentinal error patterns.
const (
	PerformanceError = "performance: %v"
	Divergence       = "performance: results diverge: %s"
)

// Config for a performance measurement. Zero values are replaced by default
// values.
type Config struct {
	// number of emulated cycles to run for
	Cycles int

	// producer timer period
	Period int

	// detector tunables. zero means the preference default
	Window     int
	Hysteresis int
}

// Default configuration values.
const (
	DefaultCycles = 1000000
	DefaultPeriod = 500
)

// Result of a single measurement.
type Result struct {
	FastForward bool
	Elapsed     time.Duration

	// emulated cycles of the machine
	Cycles uint64

	// totals for all cores
	Retired  uint64
	Executed uint64
	Skipped  uint64

	// the emulated outcome. these must be the same with or without
	// fast-forwarding
	Count int
	Taken int

	// fingerprint of memory taken once every timer period
	Digest string
}

// Rate returns the number of emulated cycles per second of host time.
func (r Result) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Cycles) / r.Elapsed.Seconds()
}

func (r Result) String() string {
	ff := "off"
	if r.FastForward {
		ff = "on"
	}
	return fmt.Sprintf("fast-forward %-3s %d cycles in %.3fs (%.0f cycles/s) retired=%d skipped=%d count=%d",
		ff, r.Cycles, r.Elapsed.Seconds(), r.Rate(), r.Retired, r.Skipped, r.Count)
}

// Measure runs the mailbox programs for the configured number of cycles.
func Measure(fastforward bool, cfg Config) (Result, error) {
	if cfg.Cycles == 0 {
		cfg.Cycles = DefaultCycles
	}
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}

	env := environment.NewEnvironment("performance", nil)
	ff := &env.Prefs.FastForward
	if err := ff.Enabled.Set(fastforward); err != nil {
		return Result{}, curated.Errorf(PerformanceError, err)
	}
	if cfg.Window != 0 {
		if err := ff.Window.Set(cfg.Window); err != nil {
			return Result{}, curated.Errorf(PerformanceError, err)
		}
	}
	if cfg.Hysteresis != 0 {
		if err := ff.Hysteresis.Set(cfg.Hysteresis); err != nil {
			return Result{}, curated.Errorf(PerformanceError, err)
		}
	}

	m, err := hardware.NewMachine(env, hardware.Config{})
	if err != nil {
		return Result{}, curated.Errorf(PerformanceError, err)
	}

	err = programs.LoadMailbox(m, programs.MailboxConfig{
		Consumer: events.Master,
		Producer: events.Slave,
		Period:   cfg.Period,
	})
	if err != nil {
		return Result{}, curated.Errorf(PerformanceError, err)
	}

	dig := digest.NewMemory()

	// memory is captured just before each timer interrupt, when the programs
	// are quiescent
	startTime := time.Now()
	for remaining := cfg.Cycles; remaining > 0; {
		n := min(remaining, cfg.Period)
		err = m.Run(n)
		if err != nil {
			return Result{}, curated.Errorf(PerformanceError, err)
		}
		dig.Capture(m.Mem)
		remaining -= n
	}

	r := Result{
		FastForward: fastforward,
		Elapsed:     time.Since(startTime),
		Cycles:      m.Cycles,
		Taken:       m.Interrupts.Taken(events.Slave),
		Digest:      dig.Hash(),
	}

	count, err := m.Mem.Read(programs.Count, poll.Word)
	if err != nil {
		return Result{}, curated.Errorf(PerformanceError, err)
	}
	r.Count = int(count)

	for _, id := range events.Cores(m.Config().NumCores) {
		st := m.Scheduler.Stats(id)
		r.Retired += st.Retired
		r.Executed += st.ExecutedCycles
		r.Skipped += st.SkippedCycles
	}

	return r, nil
}

// Compare measures the mailbox programs with and without fast-forwarding and
// writes a summary to output. The fast-forward run is profiled as requested.
func Compare(output io.Writer, profile Profile, cfg Config) (off Result, on Result, err error) {
	off, err = Measure(false, cfg)
	if err != nil {
		return off, on, err
	}

	err = RunProfiler(profile, "performance", func() error {
		var err error
		on, err = Measure(true, cfg)
		return err
	})
	if err != nil {
		return off, on, err
	}

	if on.Digest != off.Digest {
		return off, on, curated.Errorf(Divergence, fmt.Sprintf("memory digest %s/%s", off.Digest, on.Digest))
	}
	if on.Count != off.Count || on.Taken != off.Taken {
		return off, on, curated.Errorf(Divergence,
			fmt.Sprintf("count %d/%d interrupts %d/%d", off.Count, on.Count, off.Taken, on.Taken))
	}

	output.Write([]byte(off.String()))
	output.Write([]byte("\n"))
	output.Write([]byte(on.String()))
	output.Write([]byte("\n"))

	if on.Retired > 0 {
		output.Write([]byte(fmt.Sprintf("%.1fx fewer instructions retired\n", float64(off.Retired)/float64(on.Retired))))
	}

	return off, on, nil
}
