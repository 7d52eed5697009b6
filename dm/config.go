package dm

import "time"

// Config bounds the back end's polling behavior. The defaults are part
// of the contract described in spec.md §4.3 "Polling budgets", not mere
// implementation hints: 1us per poll iteration, a 1s deadline (1,000,000
// iterations), and a 10us delay after dispatching a resume before the
// first stop-reason poll.
//
// Modeled on the teacher's functional-options Options/NewOptions/
// SetReadTimeout pattern (port_linux.go).
type Config struct {
	XLen          int
	PollInterval  time.Duration
	PollTimeout   time.Duration
	ResumeDelay   time.Duration
	CPUTimeout    time.Duration
}

// Option configures a Config.
type Option func(*Config)

// NewConfig builds a Config with the spec's default budgets.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		XLen:         64,
		PollInterval: time.Microsecond,
		PollTimeout:  time.Second,
		ResumeDelay:  10 * time.Microsecond,
		CPUTimeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithXLen sets the target's native register width (32 or 64).
func WithXLen(xlen int) Option {
	return func(c *Config) { c.XLen = xlen }
}

// WithPollBudget overrides the busy-poll sleep interval and deadline.
func WithPollBudget(interval, timeout time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = interval
		c.PollTimeout = timeout
	}
}

// WithResumeDelay overrides the settle delay issued after a resume
// before the first stop-reason poll (spec.md §5 "Suspension points (3)").
func WithResumeDelay(d time.Duration) Option {
	return func(c *Config) { c.ResumeDelay = d }
}

// WithCPUTimeout overrides the running-time bound that forces an
// automatic stop (spec.md §4.2 "Run-state coordination").
func WithCPUTimeout(d time.Duration) Option {
	return func(c *Config) { c.CPUTimeout = d }
}

func (c *Config) pollIterations() int {
	if c.PollInterval <= 0 {
		return 1
	}
	n := int(c.PollTimeout / c.PollInterval)
	if n < 1 {
		n = 1
	}
	return n
}
