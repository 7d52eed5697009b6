package dm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDMControlBitfields(t *testing.T) {
	v := DMControl(0).WithDMActive(true).WithHaltReq(true).WithResumeReq(false)
	assert.True(t, v.DMActive())
	assert.True(t, v.HaltReq())
	assert.False(t, v.ResumeReq())

	v = v.WithHaltReq(false)
	assert.False(t, v.HaltReq())
}

func TestAbstractCSFields(t *testing.T) {
	raw := AbstractCS(uint32(1)<<12 | uint32(3)<<8 | 2)
	assert.True(t, raw.Busy())
	assert.Equal(t, CmdErrException, raw.CmdErr())
	assert.EqualValues(t, 2, raw.DataCount())
}

func TestBuildAccessRegisterCommand(t *testing.T) {
	cmd := buildAccessRegisterCommand(commandSizeLower64, true, false, 0x1002)
	assert.EqualValues(t, 0x00321002, cmd)
}

func TestSBCSFields(t *testing.T) {
	raw := SBCS(1<<22 | 1<<21 | uint32(SBErrorTimeout)<<12)
	assert.True(t, raw.SBBusyError())
	assert.True(t, raw.SBBusy())
	assert.Equal(t, SBErrorTimeout, raw.SBError())
}

func TestDCSRFields(t *testing.T) {
	v := DCSR(uint32(DCSRCauseEBreak) << 6)
	assert.Equal(t, DCSRCauseEBreak, v.Cause())

	v2 := v.WithStep(true)
	assert.True(t, v2.Step())

	v3 := v2.WithStep(false)
	assert.False(t, v3.Step())
}

func TestGPRRegnoEncoding(t *testing.T) {
	assert.EqualValues(t, 0x1002, gprRegno(2))
	assert.EqualValues(t, 0x1022, fprRegno(2))
}

func TestCmdErrStrings(t *testing.T) {
	assert.Equal(t, "exception", CmdErrException.String())
	assert.Equal(t, "reserved", CmdErr(6).String())
}
