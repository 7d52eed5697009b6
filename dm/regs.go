package dm

// Bitfield codecs for the Debug Module registers named in spec.md §3.
//
// Modeled directly on the teacher's termios flag words
// (port_linux.go: IFlag/OFlag/CFlag/LFlag): each DM register is a
// distinct uint32 newtype with typed getter/setter methods for its named
// bitfields, rather than ad hoc shifts scattered through the call sites.

// DMControl is the dmcontrol register.
type DMControl uint32

func (v DMControl) HaltReq() bool         { return v&(1<<31) != 0 }
func (v DMControl) ResumeReq() bool       { return v&(1<<30) != 0 }
func (v DMControl) HartReset() bool       { return v&(1<<29) != 0 }
func (v DMControl) AckHaveReset() bool    { return v&(1<<28) != 0 }
func (v DMControl) HaSel() bool           { return v&(1<<26) != 0 }
func (v DMControl) HartSelLo() uint32     { return uint32(v>>16) & 0x3FF }
func (v DMControl) HartSelHi() uint32     { return uint32(v>>6) & 0x3FF }
func (v DMControl) SetResetHaltReq() bool { return v&(1<<3) != 0 }
func (v DMControl) ClrResetHaltReq() bool { return v&(1<<2) != 0 }
func (v DMControl) NdmReset() bool        { return v&(1<<1) != 0 }
func (v DMControl) DMActive() bool        { return v&1 != 0 }

func (v DMControl) WithHaltReq(b bool) DMControl   { return setBit(v, 31, b) }
func (v DMControl) WithResumeReq(b bool) DMControl { return setBit(v, 30, b) }
func (v DMControl) WithHartReset(b bool) DMControl { return setBit(v, 29, b) }
func (v DMControl) WithNdmReset(b bool) DMControl  { return setBit(v, 1, b) }
func (v DMControl) WithDMActive(b bool) DMControl  { return setBit(v, 0, b) }

func setBit(v DMControl, bit uint, b bool) DMControl {
	if b {
		return v | DMControl(1<<bit)
	}
	return v &^ DMControl(1<<bit)
}

// DMStatus is the dmstatus register.
type DMStatus uint32

func (v DMStatus) AllHalted() bool    { return v&(1<<9) != 0 }
func (v DMStatus) AnyUnavail() bool   { return v&(1<<12) != 0 }
func (v DMStatus) AnyHaveReset() bool { return v&(1<<18) != 0 }
func (v DMStatus) Version() DMVersion { return DMVersion(v & 0xF) }

// DMVersion is the dmstatus.version field.
type DMVersion uint32

const (
	DMVersionNone DMVersion = 0
	DMVersionV011 DMVersion = 1
	DMVersionV013 DMVersion = 2
)

// AbstractCS is the abstractcs register.
type AbstractCS uint32

func (v AbstractCS) ProgBufSize() uint32 { return uint32(v>>24) & 0x1F }
func (v AbstractCS) Busy() bool          { return v&(1<<12) != 0 }
func (v AbstractCS) CmdErr() CmdErr      { return CmdErr(v>>8) & 0x7 }
func (v AbstractCS) DataCount() uint32   { return uint32(v) & 0x1F }

// cmdErrClear is the write-1-to-clear value for abstractcs.cmderr.
const cmdErrClear = AbstractCS(CmdErrOther) << 8

// CmdErr enumerates abstractcs.cmderr.
type CmdErr uint32

const (
	CmdErrNone        CmdErr = 0
	CmdErrBusy        CmdErr = 1
	CmdErrNotSupported CmdErr = 2
	CmdErrException   CmdErr = 3
	CmdErrHaltResume  CmdErr = 4
	CmdErrBus         CmdErr = 5
	CmdErrOther       CmdErr = 7
)

func (e CmdErr) String() string {
	switch e {
	case CmdErrNone:
		return "none"
	case CmdErrBusy:
		return "busy"
	case CmdErrNotSupported:
		return "not supported"
	case CmdErrException:
		return "exception"
	case CmdErrHaltResume:
		return "halt/resume"
	case CmdErrBus:
		return "bus error"
	case CmdErrOther:
		return "other"
	default:
		return "reserved"
	}
}

// commandSize enumerates command.size for the Access-Register form.
type commandSize uint32

const (
	commandSizeLower32 commandSize = 2
	commandSizeLower64 commandSize = 3
)

// Command builds the Access-Register form of the command register.
type Command uint32

// buildAccessRegisterCommand composes command per spec.md §3.
func buildAccessRegisterCommand(size commandSize, transfer, write bool, regno uint16) Command {
	v := Command(size) << 20
	if transfer {
		v |= 1 << 17
	}
	if write {
		v |= 1 << 16
	}
	v |= Command(regno)
	return v
}

// SBCS is the sbcs register.
type SBCS uint32

func (v SBCS) SBBusyError() bool  { return v&(1<<22) != 0 }
func (v SBCS) SBBusy() bool       { return v&(1<<21) != 0 }
func (v SBCS) SBError() SBError   { return SBError(v>>12) & 0x7 }
func (v SBCS) SBAsize() uint32    { return uint32(v>>5) & 0x7F }

// sbErrorClear is the write-1-to-clear value for sbcs.sberror.
const sbErrorClear = SBCS(SBErrorOther) << 12

// sbBusyErrorClear is the write-1-to-clear bit for sbcs.sbbusyerror.
const sbBusyErrorClear = SBCS(1) << 22

// SBAccess enumerates sbcs.sbaccess (access width, in bits).
type SBAccess uint32

const (
	SBAccess8   SBAccess = 0
	SBAccess16  SBAccess = 1
	SBAccess32  SBAccess = 2
	SBAccess64  SBAccess = 3
	SBAccess128 SBAccess = 4
)

// SBError enumerates sbcs.sberror.
type SBError uint32

const (
	SBErrorNone            SBError = 0
	SBErrorTimeout         SBError = 1
	SBErrorBadAddr         SBError = 2
	SBErrorAlignment       SBError = 3
	SBErrorUnsupportedSize SBError = 4
	SBErrorOther           SBError = 7
)

func (e SBError) String() string {
	switch e {
	case SBErrorNone:
		return "none"
	case SBErrorTimeout:
		return "timeout"
	case SBErrorBadAddr:
		return "bad address"
	case SBErrorAlignment:
		return "alignment"
	case SBErrorUnsupportedSize:
		return "unsupported size"
	default:
		return "reserved"
	}
}

// buildSBCSRead composes the sbcs programming word for a read phase.
func buildSBCSRead() SBCS {
	v := SBCS(0)
	v |= 1 << 20 // sbreadonaddr
	v |= SBCS(SBAccess32) << 17
	v |= 1 << 16 // sbautoincrement
	v |= 1 << 15 // sbreadondata
	v |= sbErrorClear
	v |= sbBusyErrorClear
	return v
}

// buildSBCSWrite composes the sbcs programming word for a streamed write phase.
func buildSBCSWrite() SBCS {
	v := SBCS(0)
	v |= SBCS(SBAccess32) << 17
	v |= 1 << 16 // sbautoincrement
	v |= sbErrorClear
	v |= sbBusyErrorClear
	return v
}

// DCSR is the dcsr register.
type DCSR uint32

func (v DCSR) XDebugVer() XDebugVer { return XDebugVer(v>>28) & 0xF }
func (v DCSR) Cause() DCSRCause     { return DCSRCause(v>>6) & 0x7 }
func (v DCSR) Step() bool           { return v&(1<<2) != 0 }
func (v DCSR) Prv() uint32          { return uint32(v) & 0x3 }

func (v DCSR) WithStep(b bool) DCSR {
	if b {
		return v | 1<<2
	}
	return v &^ (1 << 2)
}

// XDebugVer enumerates dcsr.xdebugver.
type XDebugVer uint32

// DCSRCause enumerates dcsr.cause.
type DCSRCause uint32

const (
	DCSRCauseEBreak  DCSRCause = 1
	DCSRCauseTrigger DCSRCause = 2
	DCSRCauseHaltReq DCSRCause = 3
	DCSRCauseStep    DCSRCause = 4
)
