package vm

const (
	MEMORY_SIZE = 65536 // Default number of memory cells.
)

// Memory is the flat cell array shared by every routine instance.
// Cell 0 is the accumulator for the to/from zero transfer instructions.
type Memory []int32

// NewMemory creates zeroed memory of the requested number of cells.
func NewMemory(size uint) Memory {
	return make(Memory, size)
}

// check validates an address.
func (mem Memory) check(addr int32) (err error) {
	if addr < 0 || int(addr) >= len(mem) {
		err = ErrInvalidAddress{Address: addr}
	}
	return
}

// Load reads the cell at addr.
func (mem Memory) Load(addr int32) (value int32, err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	value = mem[addr]
	return
}

// Store writes value to the cell at addr.
func (mem Memory) Store(addr int32, value int32) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	mem[addr] = value
	return
}

// Pointer reads the cell at addr as an address, and validates it.
func (mem Memory) Pointer(addr int32) (ptr int32, err error) {
	ptr, err = mem.Load(addr)
	if err != nil {
		return
	}

	err = mem.check(ptr)
	return
}

// Add adds delta to the cell at addr, wrapping on overflow.
func (mem Memory) Add(addr int32, delta int32) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	mem[addr] += delta
	return
}
