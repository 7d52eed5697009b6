package transport

import (
	ioctl "github.com/daedaluz/goioctl"
	"unsafe"
)

// ioctl request numbers actually exercised by this package: termios
// get/set (for MakeRaw on a serial DMI link or PTY) and the PTY-peer
// allocation triad used by OpenPTY. Trimmed from the teacher's much
// larger table (RS485, window size, process-group, exclusive-open,
// packet-mode ioctls are not reachable from this domain — see
// DESIGN.md "Dropped teacher code").
var (
	tcgets = uintptr(0x5401)
	tcsets = uintptr(0x5402)

	tiocgptn    = ioctl.IOR('T', 0x30, unsafe.Sizeof(uint32(0)))
	tiocsptlck  = ioctl.IOW('T', 0x31, unsafe.Sizeof(int32(0)))
	tiocgptpeer = ioctl.IO('T', 0x41)
)
