package dm

import "time"

// StopReason is the tri-state result of GetStopReason, preserving the
// 0/-1/-2 (halted/error/running) encoding from spec.md §9 open question
// (d) as an explicit tagged variant instead of a magic integer. There is
// no separate "timed out" state: a CPU timeout forces an actual halt
// (spec.md §4.2, §5 Cancellation (b)) before GetStopReason ever returns,
// so every non-running result reports a real, observed cause.
type StopReason struct {
	state stopState
	cause DCSRCause
}

type stopState int

const (
	stopStateHalted stopState = iota
	stopStateRunning
)

// Halted reports whether the target is halted, and if so, why.
func (r StopReason) Halted() (DCSRCause, bool) {
	return r.cause, r.state == stopStateHalted
}

// Running reports whether the target is still running.
func (r StopReason) Running() bool { return r.state == stopStateRunning }

// Continue implements spec.md §4.3 "continue": clear single-step if it
// was set, then assert resumereq.
func (b *Backend) Continue() error {
	if !b.initialized {
		return nil
	}
	if err := b.clearStepAndResume(false); err != nil {
		return err
	}
	b.runMode = RunModeContinue
	return nil
}

// Step implements spec.md §4.3 "step": set single-step, resume, and
// poll for the halt that single-stepping produces.
func (b *Backend) Step() error {
	if !b.initialized {
		return nil
	}
	if err := b.clearStepAndResume(true); err != nil {
		return err
	}
	if _, err := b.pollDMStatus(func(st DMStatus) bool { return st.AllHalted() }); err != nil {
		return err
	}
	b.runMode = RunModePaused
	return nil
}

func (b *Backend) clearStepAndResume(step bool) error {
	raw, err := b.regRW(csrDCSR, false, 0)
	if err != nil {
		return err
	}
	dcsr := DCSR(uint32(raw))
	if dcsr.Step() != step {
		if _, err := b.regRW(csrDCSR, true, uint64(dcsr.WithStep(step))); err != nil {
			return err
		}
	}
	ctrl := DMControl(0).WithDMActive(true).WithResumeReq(true)
	return b.write(addrDMControl, uint32(ctrl))
}

// Stop implements spec.md §4.3 "stop": assert haltreq and poll for the
// halt.
func (b *Backend) Stop() error {
	if !b.initialized {
		return nil
	}
	ctrl := DMControl(0).WithDMActive(true).WithHaltReq(true)
	if err := b.write(addrDMControl, uint32(ctrl)); err != nil {
		return err
	}
	if _, err := b.pollDMStatus(func(st DMStatus) bool { return st.AllHalted() }); err != nil {
		return err
	}
	b.runMode = RunModePaused
	return nil
}

// GetStopReason implements spec.md §4.3 "Get-stop-reason": poll
// dmstatus.allhalted briefly; if the target is still running and the
// configured CPU timeout has elapsed, force a real halt via Stop()
// before reporting — spec.md §4.2 and §5 Cancellation (b) both require
// an actual stop here, never a fabricated one. Reporting a halt without
// having halted the hart would desync every subsequent register/memory
// access from the target's true run state.
func (b *Backend) GetStopReason(elapsedRunning time.Duration) (StopReason, error) {
	if !b.initialized {
		return StopReason{state: stopStateRunning}, nil
	}
	raw, err := b.read(addrDMStatus)
	if err != nil {
		return StopReason{}, err
	}
	st := DMStatus(raw)
	if !st.AllHalted() {
		if elapsedRunning <= b.cfg.CPUTimeout {
			return StopReason{state: stopStateRunning}, nil
		}
		if err := b.Stop(); err != nil {
			return StopReason{}, err
		}
	}

	cause, err := b.readDCSRCause()
	if err != nil {
		return StopReason{}, err
	}
	b.runMode = RunModePaused
	return StopReason{state: stopStateHalted, cause: cause}, nil
}

func (b *Backend) readDCSRCause() (DCSRCause, error) {
	raw, err := b.regRW(csrDCSR, false, 0)
	if err != nil {
		return 0, err
	}
	return DCSR(uint32(raw)).Cause(), nil
}
