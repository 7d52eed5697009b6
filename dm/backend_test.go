package dm_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"rvgdbstub/dm"
	"rvgdbstub/transport"
)

func newTestBackend(t *testing.T, xlen int) *dm.Backend {
	t.Helper()
	sim := transport.NewSimDMI(1 << 20)
	cfg := dm.NewConfig(
		dm.WithXLen(xlen),
		dm.WithPollBudget(time.Microsecond, 50*time.Millisecond),
		dm.WithResumeDelay(time.Microsecond),
	)
	b := dm.NewBackend(sim, cfg, zerolog.Nop())
	b.Init()
	return b
}

func TestGPRRoundTrip(t *testing.T) {
	b := newTestBackend(t, 64)

	for x := uint16(1); x < 32; x++ {
		require.NoError(t, b.GPRWrite(x, 0x1122334455667788+uint64(x)))
	}
	for x := uint16(1); x < 32; x++ {
		v, err := b.GPRRead(x)
		require.NoError(t, err)
		require.Equal(t, 0x1122334455667788+uint64(x), v)
	}

	v, err := b.GPRRead(0)
	require.NoError(t, err)
	require.Zero(t, v)
	require.NoError(t, b.GPRWrite(0, 0xdeadbeef))
	v, err = b.GPRRead(0)
	require.NoError(t, err)
	require.Zero(t, v, "x0 must stay hardwired zero")
}

func TestPCRoundTripRV32Masking(t *testing.T) {
	b := newTestBackend(t, 32)
	require.NoError(t, b.PCWrite(0x1_0000_0123))
	v, err := b.PCRead()
	require.NoError(t, err)
	require.EqualValues(t, 0x0000_0123, v, "rv32 reads must mask to 32 bits")
}

func TestMemReadWriteUnalignedRoundTrip(t *testing.T) {
	b := newTestBackend(t, 64)

	cases := []struct {
		addr uint64
		n    int
	}{
		{0x1000, 1},
		{0x1001, 3},
		{0x1002, 5},
		{0x1003, 9},
		{0x2000, 4},
		{0x2004, 16},
	}
	for _, c := range cases {
		data := make([]byte, c.n)
		for i := range data {
			data[i] = byte(i*7 + 1)
		}
		require.NoError(t, b.MemWrite(c.addr, data))
		got, err := b.MemRead(c.addr, c.n)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}
}

func TestContinueStepStop(t *testing.T) {
	b := newTestBackend(t, 64)

	require.NoError(t, b.Continue())
	reason, err := b.GetStopReason(0)
	require.NoError(t, err)
	require.True(t, reason.Running())

	require.NoError(t, b.Stop())
	reason, err = b.GetStopReason(0)
	require.NoError(t, err)
	cause, halted := reason.Halted()
	require.True(t, halted)
	require.Equal(t, dm.DCSRCauseHaltReq, cause)
}

func TestStepHaltsImmediatelyWithStepCause(t *testing.T) {
	b := newTestBackend(t, 64)

	require.NoError(t, b.Step())
	reason, err := b.GetStopReason(0)
	require.NoError(t, err)
	cause, halted := reason.Halted()
	require.True(t, halted)
	require.Equal(t, dm.DCSRCauseStep, cause)
}

func TestGetStopReasonCPUTimeoutForcesRealHalt(t *testing.T) {
	sim := transport.NewSimDMI(1 << 20)
	cfg := dm.NewConfig(
		dm.WithXLen(64),
		dm.WithPollBudget(time.Microsecond, 50*time.Millisecond),
		dm.WithResumeDelay(time.Microsecond),
		dm.WithCPUTimeout(time.Millisecond),
	)
	b := dm.NewBackend(sim, cfg, zerolog.Nop())
	b.Init()
	require.True(t, b.Initialized())
	require.NoError(t, b.Continue())

	reason, err := b.GetStopReason(10 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, sim.Running(), "a reported CPU-timeout halt must actually stop the target")
	cause, halted := reason.Halted()
	require.True(t, halted)
	require.Equal(t, dm.DCSRCauseHaltReq, cause)

	// A subsequent register access must see the hart already halted
	// rather than hitting a busy/halt-resume cmderr against a target
	// the stub still believes is running.
	_, err = b.GPRRead(1)
	require.NoError(t, err)
}

func TestDMResetAcceptsV013Version(t *testing.T) {
	b := newTestBackend(t, 64)
	require.NoError(t, b.DMReset())
}
