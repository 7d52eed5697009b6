package rsp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"rvgdbstub/elfload"
)

// handleQuery implements the 'q' handlers spec.md §4.2 lists: qAttached,
// qSupported, and qRcmd (monitor commands). Anything else falls back to
// the empty-packet "not implemented" convention (spec.md §7 kind (e)).
func (s *Session) handleQuery(rest []byte) []byte {
	switch {
	case bytes.HasPrefix(rest, []byte("Attached")):
		return []byte("1")
	case bytes.HasPrefix(rest, []byte("Supported")):
		return []byte(fmt.Sprintf("PacketSize=%x", PacketSizeMax))
	case bytes.HasPrefix(rest, []byte("Rcmd,")):
		return s.handleMonitor(rest[len("Rcmd,"):])
	default:
		return emptyResponse
	}
}

const monitorHelp = "monitor commands: help, verbosity <n>, xlen <32|64>, reset_dm, reset_ndm, reset_hart, elf_load <path>\n"

func (s *Session) handleMonitor(hexCmd []byte) []byte {
	raw, err := hex2bin(hexCmd)
	if err != nil {
		return errResponse(errParse)
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return errResponse(errParse)
	}

	switch fields[0] {
	case "help":
		return s.monitorOutput(monitorHelp)
	case "verbosity":
		return s.monitorVerbosity(fields)
	case "xlen":
		return s.monitorXLen(fields)
	case "reset_dm":
		if err := s.backend.DMReset(); err != nil {
			return errResponse(errBackend)
		}
		return okResponse
	case "reset_ndm":
		if err := s.backend.NDMReset(false); err != nil {
			return errResponse(errBackend)
		}
		return okResponse
	case "reset_hart":
		if err := s.backend.HartReset(false); err != nil {
			return errResponse(errBackend)
		}
		return okResponse
	case "elf_load":
		return s.monitorElfLoad(fields)
	default:
		return errResponse(errParse)
	}
}

// monitorOutput wraps text as an O-packet: 'O' plus hex-encoded ASCII,
// the transport spec.md §4.2 specifies for help text.
func (s *Session) monitorOutput(text string) []byte {
	out := make([]byte, 0, 1+2*len(text))
	out = append(out, 'O')
	out = append(out, bin2hex([]byte(text))...)
	return out
}

func (s *Session) monitorVerbosity(fields []string) []byte {
	if len(fields) != 2 {
		return errResponse(errParse)
	}
	n, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return errResponse(errParse)
	}
	s.verbosity = int(n)
	if err := s.backend.WriteVerbosity(uint32(n)); err != nil {
		return errResponse(errBackend)
	}
	return okResponse
}

func (s *Session) monitorXLen(fields []string) []byte {
	if len(fields) != 2 {
		return errResponse(errParse)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || (n != 32 && n != 64) {
		return errResponse(errParse)
	}
	s.xlen = n
	s.backend.SetXLen(n)
	return okResponse
}

func (s *Session) monitorElfLoad(fields []string) []byte {
	if len(fields) != 2 {
		return errResponse(errParse)
	}
	image, err := elfload.Load(fields[1])
	if err != nil {
		s.log.Warn().Err(err).Str("path", fields[1]).Msg("elf load failed")
		return errResponse(errBackend)
	}
	if err := s.backend.MemWrite(image.MinAddr, image.Bytes()); err != nil {
		return errResponse(errBackend)
	}
	if image.XLen != 0 {
		s.xlen = image.XLen
		s.backend.SetXLen(image.XLen)
	}
	if err := image.WriteSymbolTable("symbol_table.txt"); err != nil {
		s.log.Warn().Err(err).Msg("writing symbol_table.txt failed")
	}
	return okResponse
}
