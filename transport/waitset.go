package transport

import (
	"errors"
	"syscall"
	"time"

	"github.com/daedaluz/fdev/poll"
)

// WaitReadable races a CommandStream and a StopSignal for readiness.
// fdev/poll only exposes a single-fd WaitInput (the teacher's
// Port.readTimeout uses exactly that), so the two waits are raced with
// goroutines rather than a native multiplexed poll call.
//
// Returns (true, false, nil) if the stream became readable, (false,
// true, nil) if the stop signal fired, and (false, false, nil) if
// neither happened before timeout — the caller is expected to loop and
// retry, matching spec.md's short-timeout select discipline. A non-nil
// err indicates a genuine wait failure (a bad or closed fd, an
// interrupted syscall that isn't transparently retried, ...) and must
// terminate the session per spec.md §7(a), not be treated as "try
// again" the way a timeout is.
func WaitReadable(stream CommandStream, stop StopSignal, timeout time.Duration) (streamReady, stopped bool, err error) {
	type result struct {
		stream  bool
		timeout bool
		err     error
	}
	results := make(chan result, 2)
	wait := func(fd int, isStream bool) {
		werr := poll.WaitInput(fd, timeout)
		switch {
		case werr == nil:
			results <- result{stream: isStream}
		case errors.Is(werr, syscall.ETIMEDOUT):
			// the underlying poll(2) wrapper reports an elapsed
			// deadline as ETIMEDOUT, same as the standard library's
			// own poll-with-timeout wrappers; anything else is a
			// genuine fd-level failure.
			results <- result{stream: isStream, timeout: true}
		default:
			results <- result{stream: isStream, err: werr}
		}
	}
	go wait(stream.Fd(), true)
	go wait(stop.Fd(), false)

	first := <-results
	if first.err != nil {
		return false, false, first.err
	}
	if !first.timeout {
		if first.stream {
			return true, false, nil
		}
		return false, true, nil
	}
	// first waiter merely timed out; check whether the other already
	// has an answer without blocking further.
	select {
	case second := <-results:
		if second.err != nil {
			return false, false, second.err
		}
		if !second.timeout {
			if second.stream {
				return true, false, nil
			}
			return false, true, nil
		}
	default:
	}
	return false, false, nil
}
