package rsp

import (
	"time"

	"rvgdbstub/transport"
)

// reassembler owns the sliding byte window a Session reads packets out
// of. It generalizes the teacher's Port.readTimeout single-fd wait into
// a two-fd wait (command stream vs. stop signal) via
// transport.WaitReadable, and keeps the bounded-deque discipline
// spec.md calls for: index 0 is always the start of the next candidate
// frame, compaction happens in place rather than reallocating.
type reassembler struct {
	stream transport.CommandStream
	stop   transport.StopSignal

	window []byte
	filled int

	waitTimeout time.Duration
	readBuf     []byte
}

func newReassembler(stream transport.CommandStream, stop transport.StopSignal) *reassembler {
	return &reassembler{
		stream:      stream,
		stop:        stop,
		window:      make([]byte, wireMax),
		waitTimeout: time.Millisecond,
		readBuf:     make([]byte, 4096),
	}
}

// outcome is returned by next(): exactly one of its fields is
// meaningful, selected by kind.
type outcome struct {
	kind    decodeKind
	payload []byte
	stopped bool
}

// next blocks until it can report one reassembly outcome: a complete
// packet, a ^C pseudo-packet, a checksum failure (caller must send
// '-'), or a stop-stream signal asking the loop to exit.
func (r *reassembler) next() (outcome, error) {
	for {
		if res, consumed := decodeFrame(r.window[:r.filled]); res.kind != decodeNeedMore {
			r.consume(consumed)
			switch res.kind {
			case decodeGarbage:
				// discarded silently at the call site's log discretion;
				// loop again immediately, more frame data may already
				// be in the window.
				continue
			case decodeControlC:
				return outcome{kind: decodeControlC}, nil
			case decodeChecksumFail:
				return outcome{kind: decodeChecksumFail}, nil
			case decodePacket:
				return outcome{kind: decodePacket, payload: res.payload}, nil
			}
		}

		if r.filled == len(r.window) {
			return outcome{}, errFrameTooLarge
		}

		ready, stopped, err := transport.WaitReadable(r.stream, r.stop, r.waitTimeout)
		if err != nil {
			return outcome{}, wrapErr("wait for readiness", err)
		}
		if stopped {
			return outcome{stopped: true}, nil
		}
		if !ready {
			continue
		}

		n, err := r.stream.Read(r.readBuf)
		if err != nil {
			return outcome{}, wrapErr("read command stream", err)
		}
		if n == 0 {
			return outcome{stopped: true}, nil
		}
		r.append(r.readBuf[:n])
	}
}

func (r *reassembler) append(b []byte) {
	n := copy(r.window[r.filled:], b)
	r.filled += n
}

// consume drops the first n bytes of the window, compacting the rest
// to index 0.
func (r *reassembler) consume(n int) {
	if n <= 0 {
		return
	}
	copy(r.window, r.window[n:r.filled])
	r.filled -= n
}

// ack/nak write the single-byte handshake the debugger expects before
// a packet is processed (ack) or before it retransmits (nak).
func (r *reassembler) ack() error {
	_, err := r.stream.Write([]byte{ackByte})
	return wrapErr("write ack", err)
}

func (r *reassembler) nak() error {
	_, err := r.stream.Write([]byte{nakByte})
	return wrapErr("write nak", err)
}
