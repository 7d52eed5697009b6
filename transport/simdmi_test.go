package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvgdbstub/transport"
)

func TestSimDMIMemoryLoadAndSBAccess(t *testing.T) {
	sim := transport.NewSimDMI(1 << 16)
	sim.LoadMemory(0x100, []byte{1, 2, 3, 4})
	assert.Equal(t, []byte{1, 2, 3, 4}, sim.ReadMemory(0x100, 4))
}

func TestSimDMIDMControlRoundTrip(t *testing.T) {
	sim := transport.NewSimDMI(1 << 12)
	require.NoError(t, sim.Write(0x10, 1)) // dmactive=1
	v, err := sim.Read(0x10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v&1)
}

func TestSimDMISBReadWriteAutoincrement(t *testing.T) {
	sim := transport.NewSimDMI(1 << 16)

	// program sbcs: sbaccess=32, sbautoincrement=1
	require.NoError(t, sim.Write(0x38, 1<<16|2<<17))
	require.NoError(t, sim.Write(0x39, 0x200)) // sbaddress0, no sbreadonaddr so no trigger

	require.NoError(t, sim.Write(0x3C, 0xAABBCCDD)) // sbdata0 -> writes word at 0x200
	require.NoError(t, sim.Write(0x3C, 0x11223344)) // autoincrement -> writes word at 0x204

	got := sim.ReadMemory(0x200, 8)
	assert.Equal(t, []byte{0xDD, 0xCC, 0xBB, 0xAA, 0x44, 0x33, 0x22, 0x11}, got)
}
