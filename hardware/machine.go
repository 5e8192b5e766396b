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

package hardware

import (
	"fmt"
	"io"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/environment"
	"github.com/jetsetilly/idleloop/hardware/cpu/spin"
	"github.com/jetsetilly/idleloop/hardware/idle/diagnostics"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/fastforward"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
	"github.com/jetsetilly/idleloop/hardware/interrupts"
	"github.com/jetsetilly/idleloop/hardware/memory/shared"
	"github.com/jetsetilly/idleloop/hardware/timeline"
)

// Sentinal error patterns.
const (
	MachineError = "hardware: %v"
	LoadError    = "hardware: load: %s: %v"
)

// Config for a new Machine. Zero values are replaced by the default values.
type Config struct {
	NumCores   int
	MemorySize int

	// maximum number of cycles given to each core in turn
	Slice int
}

// Default configuration values.
const (
	DefaultNumCores   = 2
	DefaultMemorySize = 0x10000
	DefaultSlice      = 64
)

func (cfg *Config) normalise() {
	if cfg.NumCores == 0 {
		cfg.NumCores = DefaultNumCores
	}
	if cfg.MemorySize == 0 {
		cfg.MemorySize = DefaultMemorySize
	}
	if cfg.Slice == 0 {
		cfg.Slice = DefaultSlice
	}
}

// Machine is the emulated multi-core machine.
type Machine struct {
	env *environment.Environment
	cfg Config

	Registry    *poll.Registry
	Mem         *shared.Memory
	Interrupts  *interrupts.Controller
	Timeline    *timeline.Timeline
	Scheduler   *fastforward.Scheduler
	Diagnostics *diagnostics.Counter
	CPUs        []*spin.CPU

	// cores held in reset do not execute
	held uint32

	// cycles owed to each core. negative if the core overran its slice
	credit [events.MaxCores]int

	// number of cycles the machine has run for
	Cycles uint64
}

// NewMachine is the preferred method of initialisation for the Machine type.
func NewMachine(env *environment.Environment, cfg Config) (*Machine, error) {
	cfg.normalise()
	if cfg.NumCores < 1 || cfg.NumCores > events.MaxCores {
		return nil, curated.Errorf(MachineError, fmt.Sprintf("number of cores (%d) out of range", cfg.NumCores))
	}
	if cfg.Slice < 1 {
		return nil, curated.Errorf(MachineError, fmt.Sprintf("slice (%d) too small", cfg.Slice))
	}
	if cfg.MemorySize < spin.InstructionSize {
		return nil, curated.Errorf(MachineError, fmt.Sprintf("memory size (%d) too small", cfg.MemorySize))
	}

	m := &Machine{
		env: env,
		cfg: cfg,
	}

	m.Registry = poll.NewRegistry(env, cfg.NumCores, nil)
	m.Mem = shared.NewMemory(m.Registry, cfg.MemorySize)
	m.Registry.AttachMemory(m.Mem)
	m.Interrupts = interrupts.NewController(m.Registry)
	m.Timeline = timeline.NewTimeline()
	m.Scheduler = fastforward.NewScheduler(env, m.Registry, m.Timeline)
	m.Diagnostics = diagnostics.NewCounter(m.Registry)

	for _, id := range events.Cores(cfg.NumCores) {
		cpu := spin.NewCPU(id, m.Mem, m.Interrupts)
		m.CPUs = append(m.CPUs, cpu)
		m.Scheduler.Attach(id, cpu)
	}

	return m, nil
}

// Env returns the environment of the machine.
func (m *Machine) Env() *environment.Environment {
	return m.env
}

// Config returns the normalised configuration of the machine.
func (m *Machine) Config() Config {
	return m.cfg
}

func (m *Machine) checkCore(core events.CoreID) error {
	if !core.Valid(m.cfg.NumCores) {
		return curated.Errorf(MachineError, fmt.Sprintf("invalid core (%d)", core))
	}
	return nil
}

// Load a program into memory and set the reset vector of the core to the
// origin of the program. The core is reset.
func (m *Machine) Load(core events.CoreID, p spin.Program) error {
	if err := m.checkCore(core); err != nil {
		return err
	}
	if err := m.Mem.Load(p.Origin, p.Bytes()); err != nil {
		return curated.Errorf(LoadError, core, err)
	}
	m.CPUs[core].ResetVector = p.Origin
	m.CPUs[core].Reset()
	m.Scheduler.ResetCore(core)
	return nil
}

// SetVector sets the interrupt vector of the core. Interrupts are ignored by
// the core until a vector is set.
func (m *Machine) SetVector(core events.CoreID, addr uint32) error {
	if err := m.checkCore(core); err != nil {
		return err
	}
	m.CPUs[core].Vector = addr
	m.CPUs[core].VectorEnabled = true
	return nil
}

// ScheduleInterrupt raises an interrupt for the core every period cycles.
func (m *Machine) ScheduleInterrupt(name string, period int, core events.CoreID) error {
	if err := m.checkCore(core); err != nil {
		return err
	}
	return m.Timeline.Schedule(name, period, func() {
		m.Interrupts.Raise(core)
	})
}

// ScheduleEvent fires the event for the core every period cycles. For
// example, an audio timer that changes state without writing to memory.
func (m *Machine) ScheduleEvent(name string, period int, core events.CoreID, ev events.SysEvent) error {
	if err := m.checkCore(core); err != nil {
		return err
	}
	return m.Timeline.Schedule(name, period, func() {
		m.Registry.FireSysEvent(core, ev)
	})
}

// Hold puts the core into reset. The core does not execute while it is held
// but its cycle counter continues to advance.
func (m *Machine) Hold(core events.CoreID) error {
	if err := m.checkCore(core); err != nil {
		return err
	}
	if m.held&core.Bit() != 0 {
		return nil
	}
	m.held |= core.Bit()
	m.Registry.FireSysEvent(core, events.CoreResetOn)
	return nil
}

// Release takes the core out of reset. The core starts from its reset vector.
func (m *Machine) Release(core events.CoreID) error {
	if err := m.checkCore(core); err != nil {
		return err
	}
	if m.held&core.Bit() == 0 {
		return nil
	}
	m.held &^= core.Bit()
	m.CPUs[core].Reset()
	m.credit[core] = 0
	m.Registry.FireSysEvent(core, events.CoreResetOff)
	return nil
}

// Held returns true if the core is being held in reset.
func (m *Machine) Held(core events.CoreID) bool {
	return m.held&core.Bit() != 0
}

// ResetCore pulses the reset line of the core.
func (m *Machine) ResetCore(core events.CoreID) error {
	if err := m.Hold(core); err != nil {
		return err
	}
	return m.Release(core)
}

// Reset the entire machine. Memory is preserved but every core is reset and
// the registry of listeners and polls is cleared.
func (m *Machine) Reset() {
	m.Registry.Reset()
	m.Scheduler.Reset()
	m.Diagnostics.Attach()
	m.Interrupts.Reset()
	m.Timeline.Reset()
	for _, cpu := range m.CPUs {
		cpu.Reset()
	}
	m.held = 0
	m.credit = [events.MaxCores]int{}
	m.env.Log.Log(m.env, "hardware", "machine reset")
}

// Memviz writes a graphviz representation of the poll registry.
func (m *Machine) Memviz(w io.Writer) {
	m.Registry.Memviz(w)
}
