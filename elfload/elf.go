// Package elfload parses a little-endian RISC-V ELF into the flat
// memory image the Debug Module's system-bus writer expects
// (spec.md §4.3 "ELF load"). debug/elf is used rather than a
// third-party parser: nothing in the example pack ships an ELF reader,
// and the standard library's is both complete and the form every other
// Go ELF-adjacent tool in the ecosystem builds on.
package elfload

import (
	"debug/elf"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Image is the flattened, virtual-address-indexed memory contents of
// an ELF's loadable sections, plus the handful of symbols the monitor
// command reports.
type Image struct {
	MinAddr uint64
	MaxAddr uint64
	XLen    int

	Start  uint64
	Exit   uint64
	Tohost uint64

	hasStart, hasExit, hasTohost bool

	data []byte // length MaxAddr-MinAddr+1, indexed by addr-MinAddr
}

// Bytes returns the image contents, ready for a single MemWrite
// starting at MinAddr.
func (img *Image) Bytes() []byte { return img.data }

const minLoadableFlags = elf.SHF_WRITE | elf.SHF_ALLOC | elf.SHF_EXECINSTR

func loadableType(t elf.SectionType) bool {
	switch t {
	case elf.SHT_PROGBITS, elf.SHT_NOBITS, elf.SHT_INIT_ARRAY, elf.SHT_FINI_ARRAY:
		return true
	default:
		return false
	}
}

// Load parses the ELF file at path and flattens its loadable sections
// into an Image.
func Load(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfload: open %s: %w", path, err)
	}
	defer f.Close()

	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("elfload: %s is not little-endian", path)
	}

	xlen := 32
	if f.Class == elf.ELFCLASS64 {
		xlen = 64
	}

	var minAddr uint64 = ^uint64(0)
	var maxAddr uint64
	type span struct {
		addr uint64
		data []byte
	}
	var spans []span

	for _, sec := range f.Sections {
		if sec.Flags&minLoadableFlags == 0 || !loadableType(sec.Type) {
			continue
		}
		if sec.Addr == 0 || sec.Size == 0 {
			continue
		}
		var contents []byte
		if sec.Type == elf.SHT_NOBITS {
			contents = make([]byte, sec.Size)
		} else {
			contents, err = sec.Data()
			if err != nil {
				return nil, fmt.Errorf("elfload: read section %s: %w", sec.Name, err)
			}
		}
		spans = append(spans, span{addr: sec.Addr, data: contents})
		if sec.Addr < minAddr {
			minAddr = sec.Addr
		}
		end := sec.Addr + uint64(len(contents)) - 1
		if end > maxAddr {
			maxAddr = end
		}
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("elfload: %s has no loadable sections", path)
	}

	img := &Image{MinAddr: minAddr, MaxAddr: maxAddr, XLen: xlen}
	size := maxAddr - minAddr + 1
	img.data = allocImage(size)
	for _, sp := range spans {
		copy(img.data[sp.addr-minAddr:], sp.data)
	}

	syms, err := f.Symbols()
	if err == nil {
		for _, sym := range syms {
			switch sym.Name {
			case "_start":
				img.Start, img.hasStart = sym.Value, true
			case "exit":
				img.Exit, img.hasExit = sym.Value, true
			case "tohost":
				img.Tohost, img.hasTohost = sym.Value, true
			}
		}
	}

	return img, nil
}

// largeImageThreshold is the size above which the image backing slice
// is obtained via an anonymous mmap rather than a plain make([]byte),
// avoiding a single huge heap allocation for big bare-metal images.
const largeImageThreshold = 4 << 20

func allocImage(size uint64) []byte {
	if size < largeImageThreshold {
		return make([]byte, size)
	}
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return make([]byte, size)
	}
	return b
}

// WriteSymbolTable emits the three tracked symbols as literal
// "name 0xHH…" lines, the only on-disk state spec.md §6 allows.
func (img *Image) WriteSymbolTable(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("elfload: create %s: %w", path, err)
	}
	defer f.Close()

	write := func(name string, has bool, v uint64) error {
		if !has {
			return nil
		}
		_, err := fmt.Fprintf(f, "%s 0x%x\n", name, v)
		return err
	}
	if err := write("_start", img.hasStart, img.Start); err != nil {
		return err
	}
	if err := write("exit", img.hasExit, img.Exit); err != nil {
		return err
	}
	return write("tohost", img.hasTohost, img.Tohost)
}
