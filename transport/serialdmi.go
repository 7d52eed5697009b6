package transport

import (
	"encoding/binary"
	"time"
)

// SerialDMI is a DMITransport that frames dmi read/write requests over
// a raw Port, for a Debug Module reached through a UART bridge rather
// than in-process. Request/response framing is adapted from the
// teacher's spi.go Device.Tx: write a fixed-size request, then read a
// fixed-size reply, one transaction at a time, no pipelining.
//
// Wire format, all little-endian:
//
//	request:  [op:1][addr:2][value:4]   op=0 read, op=1 write
//	response: [status:1][value:4]       status=0 ok
type SerialDMI struct {
	port    *Port
	timeout time.Duration
}

func NewSerialDMI(port *Port, timeout time.Duration) *SerialDMI {
	return &SerialDMI{port: port, timeout: timeout}
}

const (
	serialDMIOpRead  = 0
	serialDMIOpWrite = 1
)

func (s *SerialDMI) transact(op byte, addr uint16, value uint32) (uint32, error) {
	req := make([]byte, 7)
	req[0] = op
	binary.LittleEndian.PutUint16(req[1:3], addr)
	binary.LittleEndian.PutUint32(req[3:7], value)
	if _, err := s.port.Write(req); err != nil {
		return 0, wrapErr("serial dmi write request", err)
	}

	resp := make([]byte, 5)
	if err := s.readFull(resp); err != nil {
		return 0, wrapErr("serial dmi read response", err)
	}
	if resp[0] != 0 {
		return 0, wrapErr("serial dmi transaction", dmiStatusError(resp[0]))
	}
	return binary.LittleEndian.Uint32(resp[1:5]), nil
}

func (s *SerialDMI) readFull(buf []byte) error {
	for off := 0; off < len(buf); {
		n, err := s.port.ReadTimeout(buf[off:], s.timeout)
		if err != nil {
			return err
		}
		off += n
	}
	return nil
}

func (s *SerialDMI) Read(addr uint16) (uint32, error) {
	return s.transact(serialDMIOpRead, addr, 0)
}

func (s *SerialDMI) Write(addr uint16, value uint32) error {
	_, err := s.transact(serialDMIOpWrite, addr, value)
	return err
}

type dmiStatusError byte

func (e dmiStatusError) Error() string {
	switch byte(e) {
	case 1:
		return "dmi bridge: bad address"
	case 2:
		return "dmi bridge: busy"
	default:
		return "dmi bridge: unknown status"
	}
}
