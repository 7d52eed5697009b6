package dm

// DCSRRead reads the dcsr debug CSR, for front-end uses that need more
// than the cause field (the GDB virtual PRIV register reads dcsr.prv).
func (b *Backend) DCSRRead() (DCSR, error) {
	raw, err := b.regRW(csrDCSR, false, 0)
	return DCSR(uint32(raw)), err
}

// WriteVerbosity pushes a verbosity scalar into the target over the
// non-standard addrVerbosity DMI register (spec.md §6 "Environment").
// Implementations must tolerate Debug Modules that ignore this; a
// failed DMI write is still surfaced so the monitor command can report
// it.
func (b *Backend) WriteVerbosity(level uint32) error {
	if !b.initialized {
		return nil
	}
	return b.write(addrVerbosity, level)
}
