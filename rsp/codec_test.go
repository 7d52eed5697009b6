package rsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("hello"),
		[]byte("$#*}"),
		[]byte("a$b#c*d}e"),
		{0x00, 0x01, 0xff, '$', '}'},
	}
	for _, c := range cases {
		wire, err := escape(c)
		require.NoError(t, err)
		back, err := unescape(wire)
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
}

func TestBin2HexHex2BinRoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0xde, 0xad, 0xbe, 0xef, 0xff}
	h := bin2hex(data)
	assert.Len(t, h, 2*len(data))
	back, err := hex2bin(h)
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(""),
		[]byte("OK"),
		[]byte("g"),
		[]byte("p02"),
		[]byte("$#*}"),
	}
	for _, p := range payloads {
		frame, err := encodeFrame(p)
		require.NoError(t, err)
		res, consumed := decodeFrame(frame)
		require.Equal(t, decodePacket, res.kind)
		assert.Equal(t, p, res.payload)
		assert.Equal(t, len(frame), consumed)
	}
}

func TestChecksumAssociative(t *testing.T) {
	wire := []byte("qSupported:multiprocess+;PacketSize=4000")
	whole := checksum(wire)

	for split := 0; split <= len(wire); split++ {
		partial := uint16(checksum(wire[:split])) + uint16(checksum(wire[split:]))
		assert.EqualValues(t, whole, byte(partial))
	}
}

func TestDecodeFrameChecksumMismatch(t *testing.T) {
	res, consumed := decodeFrame([]byte("$g#00"))
	assert.Equal(t, decodeChecksumFail, res.kind)
	assert.Equal(t, 5, consumed)
}

func TestDecodeFrameControlC(t *testing.T) {
	res, consumed := decodeFrame([]byte{0x03, 'x'})
	assert.Equal(t, decodeControlC, res.kind)
	assert.Equal(t, 1, consumed)
}

func TestDecodeFrameNeedsMore(t *testing.T) {
	res, _ := decodeFrame([]byte("$g"))
	assert.Equal(t, decodeNeedMore, res.kind)
}

func TestDecodeFrameGarbageBeforeStart(t *testing.T) {
	res, consumed := decodeFrame([]byte("junk$g#67"))
	assert.Equal(t, decodeGarbage, res.kind)
	assert.Equal(t, 4, consumed)
}

func TestHexToValLittleEndian(t *testing.T) {
	v, err := hexToVal([]byte("efbeadde00000000"))
	require.NoError(t, err)
	assert.EqualValues(t, 0x00000000DEADBEEF, v)
}

func TestValToHexLittleEndian(t *testing.T) {
	h := valToHex(0x00000000DEADBEEF, 8)
	assert.Equal(t, "efbeadde00000000", string(h))
}

func TestHexToValOddLength(t *testing.T) {
	_, err := hexToVal([]byte("abc"))
	assert.Error(t, err)
}
