package vm

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"unicode/utf8"

	"github.com/ezrec/flstep/io"
)

// Channel is the output channel for printed runes.
type Channel io.Channel

// Machine is the execution context: memory, routine instances and call stack.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Memory  Memory    // Shared memory.
	Routine []Routine // Routine instance table.
	Stack   Stack     // Call stack of routine instance indices.
	Output  Channel   // Destination of printed runes; discarded if nil.

	Steps int   // Instructions executed since the last reset.
	Fault error // Fatal error that halted the machine, if any.
}

// NewMachine creates a new machine with a specifically sized memory.
func NewMachine(size uint) (m *Machine) {
	m = &Machine{
		Memory: NewMemory(size),
	}

	return
}

// Defines for the machine
func (m *Machine) Defines() iter.Seq2[string, string] {
	limit := m.Stack.Limit
	if limit == 0 {
		limit = STACK_LIMIT
	}

	return maps.All(map[string]string{
		"MEMORY_SIZE": fmt.Sprintf("%v", len(m.Memory)),
		"STACK_LIMIT": fmt.Sprintf("%v", limit),
	})
}

// Reset the machine state.
// - Zeros memory.
// - Rewinds every routine instance to its first instruction.
// - Empties the call stack, and clears any fault.
// - Zeros statistics counters.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("vm: reset")
	}

	clear(m.Memory)
	for n := range m.Routine {
		m.Routine[n].Pc = 0
	}
	m.Stack.Reset()
	m.Steps = 0
	m.Fault = nil
}

// Load installs the routine instances of a program, and pushes its root
// instance as the only call stack entry.
func (m *Machine) Load(prog *Program) (err error) {
	err = prog.Validate()
	if err != nil {
		return
	}

	m.Routine = prog.Routines()
	m.Stack.Reset()
	m.Stack.Push(prog.Root)
	m.Fault = nil

	if m.Verbose {
		log.Printf("vm: loaded %v routines, root %v", len(m.Routine), prog.Root)
	}

	return
}

// Running returns true until the call stack empties or a fault halts the machine.
func (m *Machine) Running() bool {
	return m.Fault == nil && !m.Stack.Empty()
}

// Current returns the routine instance on top of the call stack, and its
// program counter.
func (m *Machine) Current() (routine int, pc int, ok bool) {
	routine, ok = m.Stack.Peek()
	if !ok {
		return
	}

	pc = m.Routine[routine].Pc
	return
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	text += fmt.Sprintf("steps: %v\n", m.Steps)
	if m.Fault != nil {
		text += fmt.Sprintf("fault: %v\n", m.Fault)
	}
	for depth, index := range m.Stack.Data {
		r := &m.Routine[index]
		text += fmt.Sprintf("% 5d: %v#%v pc %v/%v\n", depth, r.Name, index, r.Pc, len(r.Code))
	}
	for n := range min(8, len(m.Memory)) {
		text += fmt.Sprintf("  [%d]: %v\n", n, m.Memory[n])
	}

	return
}

// Step executes one instruction of the routine on top of the call stack.
//
// A call pushes its target, executes exactly one instruction of the target,
// and pops it again. Chained calls are followed iteratively, using the call
// stack as the only control state. After the instruction, every instance
// touched by the step is checked for reaching the end of its code, innermost
// first: a called instance wraps back to its first instruction, while the
// root instance is popped, halting the machine.
//
// Any error is fatal, and is returned again by every later Step.
func (m *Machine) Step() (err error) {
	if m.Fault != nil {
		return m.Fault
	}

	if m.Stack.Empty() {
		return ErrHalted
	}

	pushed := 0
	defer func() {
		if err != nil {
			// Drop the frames of the unfinished call chain.
			for ; pushed > 0; pushed-- {
				m.Stack.Pop()
			}
			m.Fault = err
		}
	}()

	var leaf int
	for {
		index, _ := m.Stack.Peek()
		routine := &m.Routine[index]
		if routine.Empty() {
			// Nothing to do, not even a boundary check.
			leaf = -1
			break
		}

		if routine.Boundary() {
			// Re-entered by its own call chain after reaching the end.
			routine.Pc = 0
		}

		pc := routine.Pc
		ins := routine.Code[pc]
		routine.Pc++
		m.Steps++

		if m.Verbose {
			log.Printf("%v#%v:%03d: %v", routine.Name, index, pc, ins)
		}

		if ins.Op != OP_CAL {
			err = m.Execute(routine, ins)
			if err != nil {
				err = errors.Join(ErrInstruction{Routine: index, Pc: pc, Instruction: ins}, err)
				return
			}
			leaf = index
			break
		}

		callee := int(ins.Arg)
		if ins.Arg < 0 || callee >= len(m.Routine) {
			err = errors.Join(ErrInstruction{Routine: index, Pc: pc, Instruction: ins}, ErrInvalidRoutineIndex{Index: ins.Arg})
			return
		}
		if m.Stack.Full() {
			err = errors.Join(ErrInstruction{Routine: index, Pc: pc, Instruction: ins}, ErrCallDepth)
			return
		}
		m.Stack.Push(callee)
		pushed++
	}

	if leaf >= 0 {
		m.boundary(leaf)
	}

	// Return from each call, innermost first.
	for ; pushed > 0; pushed-- {
		m.Stack.Pop()
		caller, _ := m.Stack.Peek()
		m.boundary(caller)
	}

	return
}

// boundary wraps or pops a routine instance that has reached the end of its code.
func (m *Machine) boundary(index int) {
	routine := &m.Routine[index]
	if !routine.Boundary() {
		return
	}

	if m.Stack.Depth() > 1 {
		// Always the first instruction, so a skip off the end skips nothing.
		routine.Pc = 0
		return
	}

	// The root instance ends the program instead.
	m.Stack.Pop()
	if m.Verbose {
		log.Printf("vm: halted after %v steps", m.Steps)
	}
}

// Execute executes a single non-call instruction on behalf of a routine.
// The routine program counter must already point past the instruction.
func (m *Machine) Execute(routine *Routine, ins Instruction) (err error) {
	mem := m.Memory
	x := ins.Arg

	if ins.Op.Indirect() {
		x, err = mem.Pointer(x)
		if err != nil {
			return
		}
	}

	var value int32

	switch ins.Op {
	case OP_INC, OP_IND:
		err = mem.Add(x, 1)
	case OP_DEC, OP_DED:
		err = mem.Add(x, -1)
	case OP_TOZ, OP_TOD:
		value, err = mem.Load(x)
		if err == nil {
			err = mem.Store(0, value)
		}
	case OP_FRZ, OP_FRD:
		value, err = mem.Load(0)
		if err == nil {
			err = mem.Store(x, value)
		}
	case OP_SEZ:
		err = mem.Store(0, x)
	case OP_PRI:
		value, err = mem.Load(x)
		if err != nil {
			return
		}
		if !utf8.ValidRune(rune(value)) {
			err = ErrInvalidPrintValue{Value: value}
			return
		}
		if m.Output != nil {
			err = m.Output.Send(rune(value))
		}
	case OP_MAY:
		value, err = mem.Load(x)
		if err == nil && value == 0 {
			routine.Pc++
		}
	case OP_NMY:
		value, err = mem.Load(x)
		if err == nil && value != 0 {
			routine.Pc++
		}
	default:
		err = ErrOpInvalid
	}

	return
}
