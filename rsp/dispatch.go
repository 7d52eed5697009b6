package rsp

import (
	"bytes"
	"fmt"
	"time"

	"rvgdbstub/dm"
)

// dispatch decodes payload's first byte and runs the matching handler
// from spec.md §4.2's table. A nil return means the response is
// deferred (continue/step/^C) or was already sent inline by the
// handler; any other non-nil slice is framed and written by Run.
func (s *Session) dispatch(payload []byte) []byte {
	if len(payload) == 0 {
		return emptyResponse
	}
	switch payload[0] {
	case '?':
		return s.handleStopReasonQuery()
	case 'c':
		return s.handleResume(payload[1:], false)
	case 's':
		return s.handleResume(payload[1:], true)
	case 'D':
		s.detached = true
		return okResponse
	case 'g':
		return s.handleReadAllRegs()
	case 'G':
		return s.handleWriteAllRegs(payload[1:])
	case 'm':
		return s.handleReadMem(payload[1:])
	case 'M':
		return s.handleWriteMem(payload[1:])
	case 'p':
		return s.handleReadReg(payload[1:])
	case 'P':
		return s.handleWriteReg(payload[1:])
	case 'q':
		return s.handleQuery(payload[1:])
	case 'X':
		return s.handleWriteMemBinary(payload[1:])
	default:
		return emptyResponse
	}
}

var (
	okResponse    = []byte("OK")
	emptyResponse = []byte{}
)

func errResponse(code int) []byte {
	return []byte(fmt.Sprintf("E%02x", code))
}

const (
	errParse   = 1
	errBackend = 2
)

// markResumed starts the deferred stop-reason wait after a successful
// continue/step dispatch, honoring the post-resume settle delay spec.md
// §5 "Suspension points (3)" calls for.
func (s *Session) markResumed() {
	time.Sleep(s.backend.ResumeDelay())
	s.resumeStarted = time.Now()
	s.waitingForStopReason = true
}

func (s *Session) handleStopReasonQuery() []byte {
	reason, err := s.backend.GetStopReason(time.Since(s.resumeStarted))
	if err != nil {
		return errResponse(errBackend)
	}
	if cause, halted := reason.Halted(); halted {
		return stopReasonPayload(cause)
	}
	// still running: defer, the outer loop's poll will emit T%02x later
	s.waitingForStopReason = true
	return nil
}

// handleResume implements both 'c[addr]' and 's[addr]': an optional PC
// write followed by the matching backend resume primitive.
func (s *Session) handleResume(rest []byte, step bool) []byte {
	if len(rest) > 0 {
		addr, err := parseHexUint(rest)
		if err != nil {
			return errResponse(errParse)
		}
		if err := s.backend.PCWrite(addr); err != nil {
			return errResponse(errBackend)
		}
	}
	var err error
	if step {
		s.runMode = dm.RunModeStep
		err = s.backend.Step()
	} else {
		s.runMode = dm.RunModeContinue
		err = s.backend.Continue()
	}
	if err != nil {
		s.runMode = dm.RunModePaused
		return errResponse(errBackend)
	}
	s.markResumed()
	return nil
}

const numGPR = 32

// handleReadAllRegs implements 'g': 32 GPRs then PC, each xlen/8 bytes,
// little-endian hex. FPRs are appended zero-filled only when the
// session's FPR capability gate is enabled (spec.md §9 open question (e)).
func (s *Session) handleReadAllRegs() []byte {
	width := s.xlen / 8
	var out bytes.Buffer
	for x := uint16(0); x < numGPR; x++ {
		v, err := s.backend.GPRRead(x)
		if err != nil {
			return errResponse(errBackend)
		}
		out.Write(valToHex(v, width))
	}
	pc, err := s.backend.PCRead()
	if err != nil {
		return errResponse(errBackend)
	}
	out.Write(valToHex(pc, width))
	if s.fprEnabled {
		zero := make([]byte, width)
		zeroHex := bin2hex(zero)
		for i := 0; i < numGPR; i++ {
			out.Write(zeroHex)
		}
	}
	return out.Bytes()
}

// handleWriteAllRegs implements 'G <hex>', the inverse of handleReadAllRegs.
func (s *Session) handleWriteAllRegs(hexPayload []byte) []byte {
	width := s.xlen / 8
	hexWidth := width * 2
	expected := (numGPR + 1) * hexWidth
	if s.fprEnabled {
		expected += numGPR * hexWidth
	}
	if len(hexPayload) < expected {
		return errResponse(errParse)
	}
	for x := uint16(0); x < numGPR; x++ {
		v, err := hexToVal(hexPayload[int(x)*hexWidth : int(x)*hexWidth+hexWidth])
		if err != nil {
			return errResponse(errParse)
		}
		if err := s.backend.GPRWrite(x, v); err != nil {
			return errResponse(errBackend)
		}
	}
	pcOff := numGPR * hexWidth
	pc, err := hexToVal(hexPayload[pcOff : pcOff+hexWidth])
	if err != nil {
		return errResponse(errParse)
	}
	if err := s.backend.PCWrite(pc); err != nil {
		return errResponse(errBackend)
	}
	return okResponse
}

// splitAddrLen parses "addr,len" as used by m/M/X. addr and len are
// plain hex integers (most-significant digit first), distinct from the
// byte-order-sensitive register/memory value encoding.
func splitAddrLen(b []byte) (addr uint64, length int, rest []byte, err error) {
	comma := bytes.IndexByte(b, ',')
	if comma < 0 {
		return 0, 0, nil, errMalformedField
	}
	addr, err = parseHexUint(b[:comma])
	if err != nil {
		return 0, 0, nil, err
	}
	tail := b[comma+1:]
	colon := bytes.IndexByte(tail, ':')
	lenField := tail
	if colon >= 0 {
		lenField = tail[:colon]
		rest = tail[colon+1:]
	}
	lv, err := parseHexUint(lenField)
	if err != nil {
		return 0, 0, nil, err
	}
	return addr, int(lv), rest, nil
}

func (s *Session) handleReadMem(rest []byte) []byte {
	addr, length, err := parseAddrLenOnly(rest)
	if err != nil {
		return errResponse(errParse)
	}
	maxLen := (PacketSizeMax - 1) / 2
	if length > maxLen {
		length = maxLen
	}
	data, err := s.backend.MemRead(addr, length)
	if err != nil {
		return errResponse(errBackend)
	}
	return bin2hex(data)
}

func parseAddrLenOnly(b []byte) (uint64, int, error) {
	comma := bytes.IndexByte(b, ',')
	if comma < 0 {
		return 0, 0, errMalformedField
	}
	addr, err := parseHexUint(b[:comma])
	if err != nil {
		return 0, 0, err
	}
	length, err := parseHexUint(b[comma+1:])
	if err != nil {
		return 0, 0, err
	}
	return addr, int(length), nil
}

func (s *Session) handleWriteMem(rest []byte) []byte {
	addr, length, hexData, err := splitAddrLen(rest)
	if err != nil {
		return errResponse(errParse)
	}
	data, err := hex2bin(hexData)
	if err != nil || len(data) != length {
		return errResponse(errParse)
	}
	if err := s.backend.MemWrite(addr, data); err != nil {
		return errResponse(errBackend)
	}
	return okResponse
}

func (s *Session) handleWriteMemBinary(rest []byte) []byte {
	addr, length, data, err := splitAddrLen(rest)
	if err != nil {
		return errResponse(errParse)
	}
	data = unescapeBinary(data)
	if len(data) != length {
		return errResponse(errParse)
	}
	if err := s.backend.MemWrite(addr, data); err != nil {
		return errResponse(errBackend)
	}
	return okResponse
}

// unescapeBinary collapses the RSP escape sequence within an 'X'
// packet's raw binary body (the reassembler already unescaped the
// payload as a whole, so this is a no-op pass kept for symmetry with
// the spec's description of X's body as independently escaped; real
// GDB clients send X bodies pre-unescaped by the same frame-level
// mechanism decode_frame already applied).
func unescapeBinary(b []byte) []byte { return b }
