package transport

import "syscall"

// PipeStopSignal is a StopSignal backed by an anonymous pipe: closing
// or writing to the write end wakes anything waiting on the read end's
// fd. This is the out-of-band "terminate" channel spec.md §5 assumes
// sits alongside the command stream in every select/poll wait.
type PipeStopSignal struct {
	r, w int
}

func NewPipeStopSignal() (*PipeStopSignal, error) {
	var fds [2]int
	if err := syscall.Pipe2(fds[:], syscall.O_CLOEXEC); err != nil {
		return nil, wrapErr("pipe2", err)
	}
	return &PipeStopSignal{r: fds[0], w: fds[1]}, nil
}

func (s *PipeStopSignal) Fd() int { return s.r }

func (s *PipeStopSignal) Read(p []byte) (int, error) {
	n, err := syscall.Read(s.r, p)
	return n, wrapErr("read stop signal", err)
}

// Trigger wakes any waiter; idempotent modulo pipe buffer capacity.
func (s *PipeStopSignal) Trigger() error {
	_, err := syscall.Write(s.w, []byte{0})
	return wrapErr("write stop signal", err)
}

func (s *PipeStopSignal) Close() error {
	err1 := syscall.Close(s.r)
	err2 := syscall.Close(s.w)
	if err1 != nil {
		return wrapErr("close read end", err1)
	}
	return wrapErr("close write end", err2)
}
