package transport

import (
	"net"

	"golang.org/x/sys/unix"
)

// TCPListener accepts one debugger connection at a time, per spec.md
// §9's "single active session" accept loop. Grounded on the aykevl
// emculator package's gdbServer accept loop shape, with TCP_NODELAY
// wired in via x/sys/unix the way the rest of the pack reaches for it
// for socket options rather than hand-rolling syscalls.
type TCPListener struct {
	ln *net.TCPListener
}

func ListenTCP(addr string) (*TCPListener, error) {
	a, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, wrapErr("resolve "+addr, err)
	}
	ln, err := net.ListenTCP("tcp", a)
	if err != nil {
		return nil, wrapErr("listen "+addr, err)
	}
	return &TCPListener{ln: ln}, nil
}

func (l *TCPListener) Addr() net.Addr { return l.ln.Addr() }

func (l *TCPListener) Close() error { return wrapErr("close listener", l.ln.Close()) }

// Accept blocks for the next debugger connection and returns it wrapped
// as a CommandStream with TCP_NODELAY set, since GDB's RSP traffic is
// small and latency-sensitive.
func (l *TCPListener) Accept() (CommandStream, error) {
	conn, err := l.ln.AcceptTCP()
	if err != nil {
		return nil, wrapErr("accept", err)
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, wrapErr("syscallconn", err)
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	}); err != nil {
		conn.Close()
		return nil, wrapErr("control", err)
	}
	if sockErr != nil {
		conn.Close()
		return nil, wrapErr("setsockopt TCP_NODELAY", sockErr)
	}
	return &tcpStream{conn: conn}, nil
}

type tcpStream struct {
	conn *net.TCPConn
}

func (s *tcpStream) Read(p []byte) (int, error)  { return s.conn.Read(p) }
func (s *tcpStream) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *tcpStream) Close() error                { return s.conn.Close() }

func (s *tcpStream) Fd() int {
	raw, err := s.conn.SyscallConn()
	if err != nil {
		return -1
	}
	var fd int = -1
	raw.Control(func(f uintptr) { fd = int(f) })
	return fd
}
