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

package fastforward

import (
	"fmt"
	"time"

	"github.com/jetsetilly/idleloop/environment"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/loops"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
	"github.com/jetsetilly/idleloop/hardware/preferences"
)

// the label used for the scheduler's listeners
const listenerLabel = "fastforward"

type coreState struct {
	id     events.CoreID
	core   Core
	det    *loops.Detector
	state  State
	handle poll.Handle
	stats  Stats
}

// Scheduler is the fast-forward state machine for every attached core.
type Scheduler struct {
	env      *environment.Environment
	reg      *poll.Registry
	horizon  Horizon
	throttle Throttle

	live preferences.FastForwardLive

	cores [events.MaxCores]*coreState
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. The horizon can be nil, in which case skipping is limited only by the
// number of cycles given to Run().
func NewScheduler(env *environment.Environment, reg *poll.Registry, horizon Horizon) *Scheduler {
	return &Scheduler{
		env:      env,
		reg:      reg,
		horizon:  horizon,
		throttle: NopThrottle{},
		live:     env.Prefs.FastForward.Live(),
	}
}

// SetThrottle changes the throttle used for loops that are not safe to skip.
// A nil value is the same as NopThrottle.
func (s *Scheduler) SetThrottle(t Throttle) {
	if t == nil {
		t = NopThrottle{}
	}
	s.throttle = t
}

func (s *Scheduler) newDetector(core Core) *loops.Detector {
	return loops.NewDetector(loops.Config{
		Window:     s.live.Window,
		Hysteresis: s.live.Hysteresis,
		KnownLoops: s.live.KnownLoops,
		LoopSafe:   core.LoopSafe,
		Disqualify: core.Disqualify,
	})
}

// Attach a CPU back-end to the scheduler. It is a programming error to attach
// more than one Core with the same ID.
func (s *Scheduler) Attach(id events.CoreID, core Core) {
	if !id.Valid(s.reg.NumCores()) {
		panic(fmt.Sprintf("fastforward: attach: invalid core (%d)", id))
	}
	if s.cores[id] != nil {
		panic(fmt.Sprintf("fastforward: attach: %s already attached", id))
	}

	cs := &coreState{
		id:   id,
		core: core,
		det:  s.newDetector(core),
	}
	cs.handle = s.reg.AddListener(id, listenerLabel, s.listener(cs))
	s.cores[id] = cs
}

func (s *Scheduler) coreState(id events.CoreID) *coreState {
	if int(id) >= len(s.cores) || s.cores[id] == nil {
		panic(fmt.Sprintf("fastforward: %s is not attached", id))
	}
	return s.cores[id]
}

// UpdatePreferences copies the current preference values for use by the
// scheduler. Loop detectors are recreated if the window or hysteresis has
// changed, in which case every core returns to Normal.
func (s *Scheduler) UpdatePreferences() {
	old := s.live
	s.live = s.env.Prefs.FastForward.Live()

	rebuild := old.Window != s.live.Window || old.Hysteresis != s.live.Hysteresis || old.KnownLoops != s.live.KnownLoops
	for _, cs := range s.cores {
		if cs == nil {
			continue
		}
		if rebuild || !s.live.Enabled {
			s.toNormal(cs)
		}
		if rebuild {
			cs.det = s.newDetector(cs.core)
		}
	}
}

// the listener returns the core to Normal for any event that invalidates its
// poll. the poll is reset before the listener returns.
func (s *Scheduler) listener(cs *coreState) poll.Listener {
	return func(_ events.CoreID, ev events.SysEvent) {
		switch ev {
		case events.CoreResetOn, events.CoreResetOff:
			if cs.state != Normal {
				cs.stats.FallbackEvent[ev]++
			}
			s.toNormal(cs)
			cs.det.Reset()
			return
		}

		var kind events.PollKind
		switch cs.state {
		case Polling:
			kind = events.MemoryPoll
		case BusyLoop:
			kind = events.BusyLoop
		default:
			return
		}

		if events.Invalidates(ev, kind) {
			s.toNormal(cs)
			cs.stats.FallbackEvent[ev]++
		}
	}
}

// return core to Normal state, resetting any active poll. the loop history is
// broken so that the loop must be confirmed again before it is skipped.
func (s *Scheduler) toNormal(cs *coreState) {
	s.reg.ResetPoller(cs.id)
	if cs.state != Normal {
		cs.det.Break()
	}
	cs.state = Normal
}

// State returns the current state of the core.
func (s *Scheduler) State(id events.CoreID) State {
	return s.coreState(id).state
}

// Stats returns the statistics for the core.
func (s *Scheduler) Stats(id events.CoreID) Stats {
	return s.coreState(id).stats
}

// Detector returns the loop detector of the core.
func (s *Scheduler) Detector(id events.CoreID) *loops.Detector {
	return s.coreState(id).det
}

// ResetCore returns the core to Normal and clears its loop history.
func (s *Scheduler) ResetCore(id events.CoreID) {
	cs := s.coreState(id)
	s.toNormal(cs)
	cs.det.Reset()
}

// Reset should be called after the poll Registry has been reset. Listeners
// are registered again and every core is returned to Normal with an empty
// loop history. Statistics are preserved.
func (s *Scheduler) Reset() {
	for _, cs := range s.cores {
		if cs == nil {
			continue
		}
		s.reg.RemoveListener(cs.handle)
		cs.handle = s.reg.AddListener(cs.id, listenerLabel, s.listener(cs))
		s.toNormal(cs)
		cs.det.Reset()
	}
	s.env.Log.Log(s.env, "fastforward", "reset")
}

// Run the core for a single scheduling opportunity of the specified number
// of cycles. Returns the number of cycles consumed.
//
// The number of cycles consumed can be more than requested because an
// instruction is never split. It can be fewer than requested if the horizon
// was reached while skipping, in which case the caller should service the
// pending system event before running the core again.
func (s *Scheduler) Run(id events.CoreID, cycles int) (int, error) {
	cs := s.coreState(id)

	used := 0
	for used < cycles {
		switch cs.state {
		case Normal:
			n, err := s.step(cs)
			used += n
			if err != nil {
				return used, err
			}

		case Polling, BusyLoop:
			if !s.verify(cs) {
				continue
			}

			n := s.advance(cs, cycles-used, used)
			used += n
			if n == 0 {
				return used, nil
			}

			s.verify(cs)

		default:
			panic(fmt.Sprintf("fastforward: %s in unexpected state (%s)", id, cs.state))
		}
	}

	return used, nil
}

// execute a single instruction and feed it to the loop detector.
func (s *Scheduler) step(cs *coreState) (int, error) {
	r, err := cs.core.Step()
	if err != nil {
		return r.Cycles, err
	}

	cs.stats.Retired++
	cs.stats.ExecutedCycles += uint64(r.Cycles)

	if !s.live.Enabled {
		return r.Cycles, nil
	}

	sig := cs.det.Observe(r.Addr, r.Opcode)
	if sig.Kind != loops.Enter {
		return r.Cycles, nil
	}

	if !sig.Busy {
		s.notSkippable(cs)
		return r.Cycles, nil
	}

	ctx, target := cs.core.PollTarget(cs.det.Window())
	if target == poll.Unresolved {
		// a write to memory could end the loop but there is no way of
		// knowing which write
		if !sig.Known {
			s.env.Log.Logf(s.env, "fastforward", "%s: loop %d reads memory with no single target", cs.id, sig.LoopID)
		}
		s.notSkippable(cs)
		return r.Cycles, nil
	}

	s.loopDetected(cs, sig, ctx, target)

	return r.Cycles, nil
}

// a confirmed loop that cannot be skipped. the core stays in Normal.
func (s *Scheduler) notSkippable(cs *coreState) {
	cs.stats.NonBusy++
	if s.live.Throttle {
		cs.stats.ThrottleCharges++
		s.throttle.Charge(time.Duration(s.live.ThrottleAmount) * time.Microsecond)
	}
}

// the loop has been confirmed as safe to skip. install the poll.
func (s *Scheduler) loopDetected(cs *coreState, sig loops.Signal, ctx poll.Context, target poll.Target) {
	cs.state = LoopDetected

	if target == poll.Resolved {
		ctx.Kind = events.MemoryPoll
		s.reg.SetPoller(cs.id, ctx)
		cs.state = Polling
		cs.stats.Polls++
	} else {
		s.reg.SetPoller(cs.id, poll.Context{Kind: events.BusyLoop})
		cs.state = BusyLoop
		cs.stats.BusyLoops++
	}

	if !sig.Known {
		s.env.Log.Logf(s.env, "fastforward", "%s: loop %d confirmed (%s)", cs.id, sig.LoopID, s.reg.Poller(cs.id))
	}

	s.reg.FireSysEvent(cs.id, events.StartPolling)
}

// check the ground truth for a core in Polling or BusyLoop. returns false if
// the core has returned to Normal.
func (s *Scheduler) verify(cs *coreState) bool {
	// the poll may have been reset by a listener or by a reset of the registry
	if s.reg.AnyPollerActive()&cs.id.Bit() == 0 {
		s.toNormal(cs)
		return false
	}

	if cs.core.InterruptPending() {
		s.toNormal(cs)
		cs.stats.FallbackInterrupt++
		return false
	}

	if cs.state == BusyLoop {
		return true
	}

	ctx := s.reg.Poller(cs.id)
	v, ok := s.reg.ReadPolledValue(ctx)
	if !ok {
		// unresolved. keep spinning
		return true
	}

	if !ctx.Match.Waiting(v) {
		s.toNormal(cs)
		cs.stats.FallbackValue++
		return false
	}

	return true
}

// advance the core's cycle counter by no more than the number of cycles
// remaining and the horizon. the horizon is measured from the start of the
// scheduling opportunity so the cycles already used are subtracted from it.
// returns the number of cycles advanced.
func (s *Scheduler) advance(cs *coreState, remaining int, used int) int {
	n := remaining
	if s.horizon != nil {
		if h := s.horizon.CyclesUntilNextEvent() - used; h < n {
			n = h
		}
	}
	if s.live.MaxSkip > 0 && n > s.live.MaxSkip {
		n = s.live.MaxSkip
	}
	if n <= 0 {
		return 0
	}

	cs.core.AdvanceVirtualCycles(n)
	cs.stats.SkippedCycles += uint64(n)

	return n
}
