package dm

import "fmt"

// Error wraps a back-end failure with the operation that triggered it.
//
// Mirrors the teacher's error.go: a small {msg, err} struct with
// Error()/Unwrap(), constructed through wrapErr, so callers can match
// against the sentinel errors below with errors.Is/errors.As.
type Error struct {
	msg string
	err error
}

func (e Error) Error() string {
	if e.msg != "" {
		if e.err != nil {
			return e.msg + ": " + e.err.Error()
		}
		return e.msg
	}
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func (e Error) Unwrap() error { return e.err }

func wrapErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	return Error{msg: msg, err: err}
}

func errorf(sentinel error, format string, args ...interface{}) error {
	return Error{msg: fmt.Sprintf(format, args...), err: sentinel}
}

var (
	// ErrNotInitialized names the not-yet-initialized condition. No entry
	// point returns it: before Init has been called, every entry point is
	// a no-op that reports success.
	ErrNotInitialized = fmt.Errorf("backend not initialized")
	// ErrBusyTimeout is returned when a busy-poll loop exceeds its
	// configured deadline (abstractcs.busy or sbcs.sbbusy).
	ErrBusyTimeout = fmt.Errorf("busy-poll timeout")
	// ErrCmdErr is returned when abstractcs.cmderr is nonzero after an
	// Abstract Command completes.
	ErrCmdErr = fmt.Errorf("abstract command error")
	// ErrSBError is returned when sbcs.sberror or sbcs.sbbusyerror is
	// nonzero after a System Bus access.
	ErrSBError = fmt.Errorf("system bus error")
	// ErrBadVersion is returned by DMReset when dmstatus.version is not
	// the v0.13 External Debug Support version this stub implements.
	ErrBadVersion = fmt.Errorf("unsupported debug module version")
)
