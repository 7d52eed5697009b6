// Package dm implements the Debug-Module back end: the command layer
// that maps logical debugger operations onto sequences of 32-bit DMI
// register reads/writes against a v0.13 RISC-V External Debug Support
// Debug Module (spec.md §4.3).
package dm

import (
	"time"

	"github.com/rs/zerolog"
)

// Transport is the narrow DMI interface this package consumes. It is
// satisfied structurally (no import needed) by transport.SimDMI and
// transport.SerialDMI.
type Transport interface {
	Read(addr uint16) (uint32, error)
	Write(addr uint16, value uint32) error
}

// RunMode mirrors the advisory run-state in spec.md §3 "Session".
type RunMode int

const (
	RunModePaused RunMode = iota
	RunModePauseRequested
	RunModeStep
	RunModeContinue
)

// Backend holds the DMI transport plus the mutable state the back end
// needs across calls: verbosity, run mode, and the initialized flag
// that lets the front end be smoke-tested without hardware (spec.md
// §4.3 "Initialization").
//
// Modeled on the teacher's Port: a transport handle plus an Options
// value, with every entry point a method rather than a free function
// touching package-level state (spec.md §9 "Global mutable state").
type Backend struct {
	transport Transport
	cfg       *Config
	log       zerolog.Logger

	initialized bool
	runMode     RunMode
}

// NewBackend constructs a Backend bound to transport t.
func NewBackend(t Transport, cfg *Config, log zerolog.Logger) *Backend {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Backend{transport: t, cfg: cfg, log: log}
}

// Init marks the backend ready; the logger and configuration are the
// ones NewBackend was given. Before Init, every other entry point is a
// no-op returning OK,
// matching the teacher's "not initialized" guard pattern.
func (b *Backend) Init() {
	b.initialized = true
	b.log.Debug().Msg("backend initialized")
}

// Initialized reports whether Init has been called.
func (b *Backend) Initialized() bool { return b.initialized }

// RunMode returns the current advisory run state.
func (b *Backend) RunMode() RunMode { return b.runMode }

// XLen returns the configured target register width.
func (b *Backend) XLen() int { return b.cfg.XLen }

// SetXLen changes the target register width at runtime, for the
// monitor "xlen" command (spec.md §4.2 "Monitor commands").
func (b *Backend) SetXLen(xlen int) { b.cfg.XLen = xlen }

// ResumeDelay returns the configured settle delay issued after a
// resume and before the first stop-reason poll (spec.md §5 "Suspension
// points (3)").
func (b *Backend) ResumeDelay() time.Duration { return b.cfg.ResumeDelay }

func (b *Backend) read(addr uint16) (uint32, error) {
	v, err := b.transport.Read(addr)
	if err != nil {
		return 0, wrapErr("dmi read", err)
	}
	return v, nil
}

func (b *Backend) write(addr uint16, v uint32) error {
	if err := b.transport.Write(addr, v); err != nil {
		return wrapErr("dmi write", err)
	}
	return nil
}

// pollAbstractCSBusy polls abstractcs until busy clears, per spec.md §3
// invariant (3) and §4.3 "Polling budgets".
func (b *Backend) pollAbstractCSBusy() (AbstractCS, error) {
	n := b.cfg.pollIterations()
	for i := 0; i < n; i++ {
		raw, err := b.read(addrAbstractCS)
		if err != nil {
			return 0, err
		}
		cs := AbstractCS(raw)
		if !cs.Busy() {
			return cs, nil
		}
		time.Sleep(b.cfg.PollInterval)
	}
	return 0, errorf(ErrBusyTimeout, "abstractcs.busy still set after %s", b.cfg.PollTimeout)
}

// pollSBCSBusy polls sbcs until sbbusy clears, per spec.md §3 invariant
// (4).
func (b *Backend) pollSBCSBusy() (SBCS, error) {
	n := b.cfg.pollIterations()
	for i := 0; i < n; i++ {
		raw, err := b.read(addrSBCS)
		if err != nil {
			return 0, err
		}
		cs := SBCS(raw)
		if !cs.SBBusy() {
			return cs, nil
		}
		time.Sleep(b.cfg.PollInterval)
	}
	return 0, errorf(ErrBusyTimeout, "sbcs.sbbusy still set after %s", b.cfg.PollTimeout)
}

// pollDMStatus polls dmstatus until pred holds, returning the
// satisfying value or a timeout error.
func (b *Backend) pollDMStatus(pred func(DMStatus) bool) (DMStatus, error) {
	n := b.cfg.pollIterations()
	for i := 0; i < n; i++ {
		raw, err := b.read(addrDMStatus)
		if err != nil {
			return 0, err
		}
		st := DMStatus(raw)
		if pred(st) {
			return st, nil
		}
		time.Sleep(b.cfg.PollInterval)
	}
	return 0, errorf(ErrBusyTimeout, "dmstatus condition not met after %s", b.cfg.PollTimeout)
}

// clearCmdErr writes the write-1-to-clear value to abstractcs, per
// spec.md §7 "Propagation": failures never leave stale bits set.
func (b *Backend) clearCmdErr() error {
	return b.write(addrAbstractCS, uint32(cmdErrClear))
}

// clearSBError writes the write-1-to-clear values to sbcs.
func (b *Backend) clearSBError() error {
	return b.write(addrSBCS, uint32(sbErrorClear|sbBusyErrorClear))
}

// DMReset implements spec.md §4.3 "dm_reset".
func (b *Backend) DMReset() error {
	if !b.initialized {
		return nil
	}
	if err := b.write(addrDMControl, uint32(DMControl(0).WithDMActive(false))); err != nil {
		return err
	}
	if _, err := b.pollAbstractCSBusy(); err != nil {
		return err
	}
	raw, err := b.read(addrDMStatus)
	if err != nil {
		return err
	}
	ver := DMStatus(raw).Version()
	if ver != DMVersionV013 {
		return errorf(ErrBadVersion, "dmstatus.version=%d, want v0.13", ver)
	}
	if err := b.write(addrDMControl, uint32(DMControl(0).WithDMActive(true))); err != nil {
		return err
	}
	return nil
}

// NDMReset implements spec.md §4.3 "ndm_reset(haltreq)".
func (b *Backend) NDMReset(haltreq bool) error {
	if !b.initialized {
		return nil
	}
	ctrl := DMControl(0).WithDMActive(true).WithNdmReset(true).WithHaltReq(haltreq)
	if err := b.write(addrDMControl, uint32(ctrl)); err != nil {
		return err
	}
	ctrl = ctrl.WithNdmReset(false)
	if err := b.write(addrDMControl, uint32(ctrl)); err != nil {
		return err
	}
	_, err := b.pollDMStatus(func(st DMStatus) bool { return !st.AnyUnavail() })
	return err
}

// HartReset implements spec.md §4.3 "hart_reset(haltreq)".
func (b *Backend) HartReset(haltreq bool) error {
	if !b.initialized {
		return nil
	}
	ctrl := DMControl(0).WithDMActive(true).WithHartReset(true).WithHaltReq(haltreq)
	if err := b.write(addrDMControl, uint32(ctrl)); err != nil {
		return err
	}
	_, err := b.pollDMStatus(func(st DMStatus) bool { return !st.AnyHaveReset() })
	return err
}
