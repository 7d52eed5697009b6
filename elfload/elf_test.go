package elfload

import (
	"debug/elf"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadRoundTrip exercises Load's core path against a hand-built
// minimal little-endian RV64 ELF fixture (testdata/minimal.elf): one
// PROGBITS .text at 0x80000000, one NOBITS .bss immediately after, and
// _start/exit/tohost symbols, covering the address extraction and
// symbol lookup spec.md names.
func TestLoadRoundTrip(t *testing.T) {
	img, err := Load("testdata/minimal.elf")
	require.NoError(t, err)

	assert.Equal(t, 64, img.XLen)
	assert.Equal(t, uint64(0x80000000), img.MinAddr)
	assert.Equal(t, uint64(0x80000107), img.MaxAddr)

	assert.Equal(t, uint64(0x80000000), img.Start)
	assert.Equal(t, uint64(0x80000004), img.Exit)
	assert.Equal(t, uint64(0x80000008), img.Tohost)

	data := img.Bytes()
	require.Len(t, data, int(img.MaxAddr-img.MinAddr+1))
	// .text holds two 4-byte RISC-V NOPs (addi x0,x0,0 = 0x00000013).
	assert.Equal(t, []byte{0x13, 0x00, 0x00, 0x00, 0x13, 0x00, 0x00, 0x00}, data[:8])
	// .bss is NOBITS: zero-filled in the flattened image.
	assert.Equal(t, make([]byte, 0x100), data[8:8+0x100])
}

func TestLoadableType(t *testing.T) {
	assert.True(t, loadableType(elf.SHT_PROGBITS))
	assert.True(t, loadableType(elf.SHT_NOBITS))
	assert.True(t, loadableType(elf.SHT_INIT_ARRAY))
	assert.True(t, loadableType(elf.SHT_FINI_ARRAY))
	assert.False(t, loadableType(elf.SHT_SYMTAB))
	assert.False(t, loadableType(elf.SHT_STRTAB))
}

func TestWriteSymbolTable(t *testing.T) {
	img := &Image{
		Start: 0x80000000, hasStart: true,
		Exit: 0x80001000, hasExit: true,
		// tohost intentionally absent
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "symbol_table.txt")
	require.NoError(t, img.WriteSymbolTable(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "_start 0x80000000\nexit 0x80001000\n", string(data))
}

func TestAllocImageSmallVsLarge(t *testing.T) {
	small := allocImage(16)
	assert.Len(t, small, 16)

	large := allocImage(largeImageThreshold + 1)
	assert.Len(t, large, largeImageThreshold+1)
}
