package transport

import (
	"fmt"
	"syscall"
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

// OpenPTY allocates a pseudo-terminal pair and returns (master, slave)
// ready for raw use, shaped after the teacher's pty_linux.go OpenPTY.
// The teacher's version calls master.SetLockPT/master.GetPTPeer as
// though those were Port methods; neither is defined anywhere in the
// teacher snapshot available here, so the unlock/peer-open steps below
// are rebuilt directly from the TIOCSPTLCK/TIOCGPTPEER ioctls (see
// DESIGN.md) rather than ported verbatim.
func OpenPTY(attrs *Termios) (master, slave *Port, err error) {
	fd, err := syscall.Open("/dev/ptmx", syscall.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, nil, wrapErr("open /dev/ptmx", err)
	}
	master = newPort(fd)

	if err := master.setLockPT(false); err != nil {
		master.Close()
		return nil, nil, wrapErr("unlock pty", err)
	}
	slave, err = master.getPTPeer(syscall.O_RDWR | syscall.O_NOCTTY)
	if err != nil {
		master.Close()
		return nil, nil, wrapErr("open pty peer", err)
	}
	if attrs != nil {
		if err := slave.SetAttr(TCSANOW, attrs); err != nil {
			master.Close()
			slave.Close()
			return nil, nil, wrapErr("configure pty peer", err)
		}
	}
	return master, slave, nil
}

// PTSName returns the path of the slave device associated with a
// /dev/ptmx master, via TIOCGPTN.
func (p *Port) PTSName() (string, error) {
	var n uint32
	if err := ioctl.Ioctl(uintptr(p.fd), tiocgptn, uintptr(unsafe.Pointer(&n))); err != nil {
		return "", wrapErr("tiocgptn", err)
	}
	return fmt.Sprintf("/dev/pts/%d", n), nil
}

// setLockPT sets or clears the pty's lock flag (TIOCSPTLCK). Unlocking
// is required before the slave side can be opened at all.
func (p *Port) setLockPT(locked bool) error {
	var v int32
	if locked {
		v = 1
	}
	return wrapErr("tiocsptlck", ioctl.Ioctl(uintptr(p.fd), tiocsptlck, uintptr(unsafe.Pointer(&v))))
}

// getPTPeer opens the pty's slave side via TIOCGPTPEER, which — unlike
// an ordinary ioctl — returns the new file descriptor as its result
// rather than writing through a pointer argument, so it is issued with
// a raw syscall instead of the goioctl helper.
func (p *Port) getPTPeer(flags int) (*Port, error) {
	r1, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(p.fd), tiocgptpeer, uintptr(flags))
	if errno != 0 {
		return nil, wrapErr("tiocgptpeer", errno)
	}
	return newPort(int(r1)), nil
}
