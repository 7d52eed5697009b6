package dm

// Debug Module Interface address map (RISC-V External Debug Support v0.13).
//
// Modeled on the flat ioctl-request-number table in the teacher's
// ioctl_linux.go: a package-level var block of named addresses, grouped by
// function rather than by numeric order.
var (
	addrDMControl   = uint16(0x10)
	addrDMStatus    = uint16(0x11)
	addrHartInfo    = uint16(0x12)
	addrHaltSum     = uint16(0x13)
	addrAbstractCS  = uint16(0x16)
	addrCommand     = uint16(0x17)
	addrAbstractAuto = uint16(0x18)

	addrData0 = uint16(0x04)
	addrData1 = uint16(0x05)
	// addrData10 is canonical 0x0e per spec.md §9 open question (c); a
	// constant table in the original source aliases it to data9 (0x0d).
	addrData10 = uint16(0x0e)
	addrData11 = uint16(0x0F)

	addrProgBuf0 = uint16(0x20)

	addrSBCS      = uint16(0x38)
	addrSBAddress0 = uint16(0x39)
	addrSBAddress1 = uint16(0x3A)
	addrSBAddress2 = uint16(0x3B)
	addrSBData0    = uint16(0x3C)
	addrSBData1    = uint16(0x3D)
	addrSBData2    = uint16(0x3E)
	addrSBData3    = uint16(0x3F)

	// addrVerbosity is a non-standard, vendor-extension register used to
	// push a verbosity scalar into the target. Implementations must
	// tolerate Debug Modules that silently ignore writes to it.
	addrVerbosity = uint16(0x60)
)

// Debug CSR addresses (not DM addresses; regno values for Abstract Commands).
const (
	csrDCSR = uint16(0x7B0)
	csrDPC  = uint16(0x7B1)
	// csrDScratch1 is canonical per spec.md §9 open question (b); the
	// original source's constant table aliases this to dscratch0's
	// address, which is wrong.
	csrDScratch0 = uint16(0x7B2)
	csrDScratch1 = uint16(0x7B3)
)

// regno encoding for the Access-Register form of the Abstract Command.
const (
	regnoGPRBase = uint16(0x1000)
	regnoFPRBase = uint16(0x1020)
)

// gprRegno returns the regno for general-purpose register x.
func gprRegno(x uint16) uint16 { return regnoGPRBase + x }

// fprRegno returns the regno for floating-point register x.
func fprRegno(x uint16) uint16 { return regnoFPRBase + x }
