package io

import (
	"io"
	"strings"
)

// RomEncoding selects how ROM source bytes are converted to cells.
type RomEncoding int

const (
	ROM_ENCODING_BYTES     = RomEncoding(0) // One byte per cell.
	ROM_ENCODING_BRAINFUCK = RomEncoding(1) // Brainfuck commands as 1..8.
)

// brainfuckCommands are numbered from 1, in this order.
const brainfuckCommands = "><+-.,[]"

// Rom is a memory image copied into machine memory at reset.
type Rom struct {
	Address int
	Data    []int32
}

// RomFromBytes creates a ROM with one cell per byte.
func RomFromBytes(address int, data []byte) (rom *Rom) {
	rom = &Rom{Address: address, Data: make([]int32, len(data))}
	for n, b := range data {
		rom.Data[n] = int32(b)
	}

	return
}

// RomFromBrainfuck creates a ROM from brainfuck source.
// The commands > < + - . , [ ] are stored as 1 through 8 in consecutive
// cells; every other character is ignored.
func RomFromBrainfuck(address int, src []byte) (rom *Rom) {
	rom = &Rom{Address: address}
	for _, b := range src {
		code := strings.IndexByte(brainfuckCommands, b)
		if code < 0 {
			continue
		}
		rom.Data = append(rom.Data, int32(code+1))
	}

	return
}

// ReadRom reads an entire stream as a ROM with the given encoding.
func ReadRom(address int, in io.Reader, encoding RomEncoding) (rom *Rom, err error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return
	}

	switch encoding {
	case ROM_ENCODING_BYTES:
		rom = RomFromBytes(address, data)
	case ROM_ENCODING_BRAINFUCK:
		rom = RomFromBrainfuck(address, data)
	default:
		err = ErrRomEncoding
	}

	return
}

// Apply copies the ROM into memory.
func (rom *Rom) Apply(mem []int32) (err error) {
	if rom.Address < 0 || rom.Address+len(rom.Data) > len(mem) {
		return ErrRomRange
	}

	copy(mem[rom.Address:], rom.Data)
	return
}
