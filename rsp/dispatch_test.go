package rsp

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvgdbstub/dm"
	"rvgdbstub/transport"
)

// fakeStream/fakeStop only need to satisfy the transport interfaces;
// dispatch() never touches the stream directly, so these are unused in
// practice but required to construct a Session.
type fakeStream struct{}

func (fakeStream) Read([]byte) (int, error)  { return 0, nil }
func (fakeStream) Write([]byte) (int, error) { return 0, nil }
func (fakeStream) Close() error              { return nil }
func (fakeStream) Fd() int                   { return -1 }

type fakeStop struct{}

func (fakeStop) Read([]byte) (int, error) { return 0, nil }
func (fakeStop) Fd() int                  { return -1 }

func newTestSession(t *testing.T, xlen int) (*Session, *transport.SimDMI) {
	t.Helper()
	sim := transport.NewSimDMI(1 << 20)
	cfg := dm.NewConfig(dm.WithXLen(xlen))
	backend := dm.NewBackend(sim, cfg, zerolog.Nop())
	backend.Init()
	sess := NewSession(fakeStream{}, fakeStop{}, backend, zerolog.Nop())
	return sess, sim
}

func TestDispatchReadGPR2RV64(t *testing.T) {
	sess, _ := newTestSession(t, 64)
	require.NoError(t, sess.backend.GPRWrite(2, 0x00000000DEADBEEF))

	resp := sess.dispatch([]byte("p02"))
	assert.Equal(t, "efbeadde00000000", string(resp))
}

func TestDispatchWritePCRV32(t *testing.T) {
	sess, _ := newTestSession(t, 32)

	resp := sess.dispatch([]byte("P20=78563412"))
	assert.Equal(t, "OK", string(resp))

	pc, err := sess.backend.PCRead()
	require.NoError(t, err)
	assert.EqualValues(t, 0x12345678, pc)
}

func TestDispatchWriteUnalignedX(t *testing.T) {
	sess, _ := newTestSession(t, 64)

	payload := append([]byte("X80000003,5:"), []byte{1, 2, 3, 4, 5}...)
	resp := sess.dispatch(payload)
	assert.Equal(t, "OK", string(resp))

	got, err := sess.backend.MemRead(0x80000003, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got)
}

func TestDispatchUnknownCommandIsEmpty(t *testing.T) {
	sess, _ := newTestSession(t, 64)
	resp := sess.dispatch([]byte("Z0,0,0"))
	assert.Equal(t, []byte{}, resp)
}

func TestDispatchQSupportedAndQAttached(t *testing.T) {
	sess, _ := newTestSession(t, 64)
	assert.Equal(t, "PacketSize=4000", string(sess.dispatch([]byte("qSupported:multiprocess+"))))
	assert.Equal(t, "1", string(sess.dispatch([]byte("qAttached"))))
}

func TestDispatchContinueThenControlCReportsHaltReq(t *testing.T) {
	sess, _ := newTestSession(t, 64)

	resp := sess.dispatch([]byte("c"))
	assert.Nil(t, resp)
	assert.True(t, sess.waitingForStopReason)

	sess.handleControlC()
	require.NoError(t, sess.pollStopReason())
	assert.False(t, sess.waitingForStopReason)

	reason, err := sess.backend.GetStopReason(0)
	require.NoError(t, err)
	cause, halted := reason.Halted()
	require.True(t, halted)
	assert.Equal(t, dm.DCSRCauseHaltReq, cause)
}

func TestDispatchReadWriteMemRoundTrip(t *testing.T) {
	sess, _ := newTestSession(t, 64)

	data := []byte{0xde, 0xad, 0xbe, 0xef}
	writeResp := sess.dispatch([]byte("M1000,4:deadbeef"))
	assert.Equal(t, "OK", string(writeResp))

	readResp := sess.dispatch([]byte("m1000,4"))
	got, err := hex2bin(readResp)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDispatchUnknownRegisterErrors(t *testing.T) {
	sess, _ := newTestSession(t, 64)
	resp := sess.dispatch([]byte("p9999"))
	assert.Equal(t, "E01", string(resp))
}
