package dm

// regRW implements the shared Abstract-Command register access helper
// described in spec.md §4.3 "Register read/write (Abstract-Command
// protocol)".
func (b *Backend) regRW(regno uint16, write bool, value uint64) (uint64, error) {
	if !b.initialized {
		return 0, nil
	}
	size := commandSizeLower32
	if b.cfg.XLen == 64 {
		size = commandSizeLower64
	}

	if write {
		if err := b.write(addrData0, uint32(value)); err != nil {
			return 0, err
		}
		if b.cfg.XLen == 64 {
			if err := b.write(addrData1, uint32(value>>32)); err != nil {
				return 0, err
			}
		}
	}

	cmd := buildAccessRegisterCommand(size, true, write, regno)
	if err := b.write(addrCommand, uint32(cmd)); err != nil {
		return 0, err
	}

	cs, err := b.pollAbstractCSBusy()
	if err != nil {
		return 0, err
	}

	if cmderr := cs.CmdErr(); cmderr != CmdErrNone {
		b.log.Warn().Stringer("cmderr", cmderr).Uint16("regno", regno).Msg("abstract command error")
		if cerr := b.clearCmdErr(); cerr != nil {
			return 0, cerr
		}
		// Open question (a): propagate cmderr as an error in both the
		// read and write branches, rather than silently returning OK.
		return 0, errorf(ErrCmdErr, "regno=0x%04x: %s", regno, cmderr)
	}

	if write {
		return 0, nil
	}

	lo, err := b.read(addrData0)
	if err != nil {
		return 0, err
	}
	if b.cfg.XLen != 64 {
		return uint64(lo), nil
	}
	hi, err := b.read(addrData1)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

func maskXLen(xlen int, v uint64) uint64 {
	if xlen == 32 {
		return v & 0xFFFFFFFF
	}
	return v
}

// GPRRead reads general-purpose register x (x0 is hardwired zero).
func (b *Backend) GPRRead(x uint16) (uint64, error) {
	if x == 0 {
		return 0, nil
	}
	v, err := b.regRW(gprRegno(x), false, 0)
	return maskXLen(b.cfg.XLen, v), err
}

// GPRWrite writes general-purpose register x. x0 is hardwired zero and
// writes to it are silently discarded.
func (b *Backend) GPRWrite(x uint16, value uint64) error {
	if x == 0 {
		return nil
	}
	_, err := b.regRW(gprRegno(x), true, maskXLen(b.cfg.XLen, value))
	return err
}

// FPRRead reads floating-point register x.
func (b *Backend) FPRRead(x uint16) (uint64, error) {
	v, err := b.regRW(fprRegno(x), false, 0)
	return maskXLen(b.cfg.XLen, v), err
}

// FPRWrite writes floating-point register x.
func (b *Backend) FPRWrite(x uint16, value uint64) error {
	_, err := b.regRW(fprRegno(x), true, maskXLen(b.cfg.XLen, value))
	return err
}

// CSRRead reads CSR number csr.
func (b *Backend) CSRRead(csr uint16) (uint64, error) {
	v, err := b.regRW(csr, false, 0)
	return maskXLen(b.cfg.XLen, v), err
}

// CSRWrite writes CSR number csr.
func (b *Backend) CSRWrite(csr uint16, value uint64) error {
	_, err := b.regRW(csr, true, maskXLen(b.cfg.XLen, value))
	return err
}

// PCRead reads the program counter via the dpc debug CSR.
func (b *Backend) PCRead() (uint64, error) {
	return b.CSRRead(csrDPC)
}

// PCWrite writes the program counter via the dpc debug CSR.
func (b *Backend) PCWrite(value uint64) error {
	return b.CSRWrite(csrDPC, value)
}
