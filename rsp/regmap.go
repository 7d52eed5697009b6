package rsp

import "bytes"

// Regnum map for 'p'/'P', per spec.md §4.2 "Regnum map": GPRs, then PC,
// then FPRs, then a wide CSR range, then a one-byte virtual PRIV
// register parked at 0x1041.
const (
	regnumGPRBase = 0x00
	regnumGPRLast = 0x1F
	regnumPC      = 0x20
	regnumFPRBase = 0x21
	regnumFPRLast = 0x40
	regnumCSRBase = 0x41
	regnumCSRLast = 0x41 + 0xFFF
	regnumPRIV    = 0x1041
)

// regRead returns the register's value and width in bytes.
func (s *Session) regRead(n uint16) (value uint64, width int, err error) {
	width = s.xlen / 8
	switch {
	case n <= regnumGPRLast:
		value, err = s.backend.GPRRead(n)
		return value, width, err
	case n == regnumPC:
		value, err = s.backend.PCRead()
		return value, width, err
	case n >= regnumFPRBase && n <= regnumFPRLast:
		value, err = s.backend.FPRRead(n - regnumFPRBase)
		return value, width, err
	case n >= regnumCSRBase && n <= regnumCSRLast:
		value, err = s.backend.CSRRead(n - regnumCSRBase)
		return value, width, err
	case n == regnumPRIV:
		dcsr, err := s.backend.DCSRRead()
		return uint64(dcsr.Prv()), 1, err
	default:
		return 0, 0, errUnknownRegister
	}
}

func (s *Session) regWrite(n uint16, value uint64) error {
	switch {
	case n <= regnumGPRLast:
		return s.backend.GPRWrite(n, value)
	case n == regnumPC:
		return s.backend.PCWrite(value)
	case n >= regnumFPRBase && n <= regnumFPRLast:
		return s.backend.FPRWrite(n-regnumFPRBase, value)
	case n >= regnumCSRBase && n <= regnumCSRLast:
		return s.backend.CSRWrite(n-regnumCSRBase, value)
	case n == regnumPRIV:
		// PRIV is read-only from this stub's point of view: the debug
		// module does not expose a direct privilege-mode write path
		// outside of dcsr.prv, which is not safe to poke independently.
		return nil
	default:
		return errUnknownRegister
	}
}

func (s *Session) handleReadReg(rest []byte) []byte {
	n, err := parseHexUint(rest)
	if err != nil {
		return errResponse(errParse)
	}
	value, width, err := s.regRead(uint16(n))
	if err != nil {
		if err == errUnknownRegister {
			return errResponse(errParse)
		}
		return errResponse(errBackend)
	}
	return valToHex(value, width)
}

func (s *Session) handleWriteReg(rest []byte) []byte {
	eq := bytes.IndexByte(rest, '=')
	if eq < 0 {
		return errResponse(errParse)
	}
	n, err := parseHexUint(rest[:eq])
	if err != nil {
		return errResponse(errParse)
	}
	v, err := hexToVal(rest[eq+1:])
	if err != nil {
		return errResponse(errParse)
	}
	if err := s.regWrite(uint16(n), v); err != nil {
		if err == errUnknownRegister {
			return errResponse(errParse)
		}
		return errResponse(errBackend)
	}
	return okResponse
}
