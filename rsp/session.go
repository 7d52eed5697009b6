package rsp

import (
	"time"

	"github.com/rs/zerolog"

	"rvgdbstub/dm"
	"rvgdbstub/transport"
)

// Session is the front end's bound triple plus the run-state the
// outer loop tracks, replacing the teacher-era global statics
// (run_mode, gdb_fd, stop_fd, waiting_for_stop_reason) with a value
// threaded through every handler.
type Session struct {
	stream transport.CommandStream
	stop   transport.StopSignal
	log    zerolog.Logger

	backend *dm.Backend
	r       *reassembler

	xlen    int
	runMode dm.RunMode

	waitingForStopReason bool
	resumeStarted        time.Time

	autoClose  bool
	verbosity  int
	fprEnabled bool
	detached   bool
}

// NewSession binds a command stream, stop signal, and Debug-Module
// back end into a front-end loop. xlen starts at the backend's
// configured width and can be changed later via the xlen monitor
// command.
func NewSession(stream transport.CommandStream, stop transport.StopSignal, backend *dm.Backend, log zerolog.Logger) *Session {
	return &Session{
		stream:  stream,
		stop:    stop,
		log:     log,
		backend: backend,
		r:       newReassembler(stream, stop),
		xlen:    backend.XLen(),
		runMode: dm.RunModePaused,
	}
}

// SetAutoClose controls whether Run closes the stop stream (if it is
// closable) on exit, alongside the command stream which is always
// closed. The logger is never closed.
func (s *Session) SetAutoClose(auto bool) { s.autoClose = auto }

// Run drives the front-end loop to completion: reassemble a packet,
// dispatch it, poll for a deferred stop reason, repeat, until the stop
// stream fires or a transport error occurs.
func (s *Session) Run() error {
	defer s.close()

	for {
		out, err := s.r.next()
		if err != nil {
			return wrapErr("reassembly", err)
		}
		if out.stopped {
			s.log.Info().Msg("stop signal received, ending session")
			return nil
		}

		switch out.kind {
		case decodeControlC:
			s.handleControlC()
		case decodeChecksumFail:
			if err := s.r.nak(); err != nil {
				return err
			}
			continue
		case decodePacket:
			if err := s.r.ack(); err != nil {
				return err
			}
			resp := s.dispatch(out.payload)
			if resp != nil {
				if err := s.sendPacket(resp); err != nil {
					return err
				}
			}
			if s.detached {
				return nil
			}
		}

		if s.waitingForStopReason {
			if err := s.pollStopReason(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) close() {
	s.stream.Close()
	if s.autoClose {
		// best-effort; a read-only stop signal may not implement Close,
		// so this is an opportunistic type assertion
		if c, ok := interface{}(s.stop).(interface{ Close() error }); ok {
			c.Close()
		}
	}
}

func (s *Session) sendPacket(payload []byte) error {
	frame, err := encodeFrame(payload)
	if err != nil {
		return wrapErr("encode response", err)
	}
	_, err = s.stream.Write(frame)
	return wrapErr("write response", err)
}

// handleControlC treats an async interrupt as a halt request; the stop
// reason is reported through the normal deferred path once the target
// actually observes allhalted.
func (s *Session) handleControlC() {
	if err := s.backend.Stop(); err != nil {
		s.log.Warn().Err(err).Msg("stop on ^C failed")
	}
	s.runMode = dm.RunModePauseRequested
	s.waitingForStopReason = true
}

// pollStopReason implements the outer loop's "poll get_stop_reason
// each iteration" behavior: on halted, emit exactly one T%02x and clear
// the flag; on running, do nothing this tick. A CPU timeout is not a
// distinct outcome here — GetStopReason forces a real halt itself
// before ever returning, so every halted result carries the cause that
// halt actually produced.
func (s *Session) pollStopReason() error {
	elapsed := time.Since(s.resumeStarted)
	reason, err := s.backend.GetStopReason(elapsed)
	if err != nil {
		s.log.Warn().Err(err).Msg("get stop reason failed")
		return nil
	}
	if cause, halted := reason.Halted(); halted {
		s.waitingForStopReason = false
		s.runMode = dm.RunModePaused
		return s.sendPacket(stopReasonPayload(cause))
	}
	return nil
}

func stopReasonPayload(cause dm.DCSRCause) []byte {
	out := make([]byte, 0, 3)
	out = append(out, 'T')
	out = append(out, hexByte(byte(cause))...)
	return out
}
