// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/flstep/internal"
	"github.com/ezrec/flstep/io"
	"github.com/ezrec/flstep/vm"
)

const (
	MEMORY_SIZE = vm.MEMORY_SIZE // Default memory cells.
	POLL_STEPS  = 4096           // Steps between context checks in Run.
)

const (
	ROM_ADDRESS = 100 // Conventional address of a brainfuck payload.
)

var _emulator_defines = map[string]string{
	"ROM_ADDRESS": fmt.Sprintf("%v", ROM_ADDRESS),
}

// Emulator state. Machine + program + output tape + memory preloads.
type Emulator struct {
	Verbose     bool        // If set, enables verbose logging.
	*vm.Machine             // Reference to the machine simulation.
	Program     *vm.Program // Reference to the currently running program.

	Tape  io.Tape   // Output tape for printed runes; discarded by default.
	Roms  []*io.Rom // Memory preloads, applied in order at reset.
	Limit int       // Maximum steps executed; unlimited if zero.
}

// NewEmulator creates a new emulator with the default memory size.
func NewEmulator() (emu *Emulator) {
	return NewEmulatorSize(MEMORY_SIZE)
}

// NewEmulatorSize creates a new emulator with a specifically sized memory.
func NewEmulatorSize(size uint) (emu *Emulator) {
	emu = &Emulator{
		Machine: vm.NewMachine(size),
		Program: &vm.Program{},
	}

	emu.Tape.Output = stdio.Discard
	emu.Machine.Output = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
	)
}

// Reset the emulator: zero memory, apply the ROMs, and load the program.
func (emu *Emulator) Reset() (err error) {
	emu.Machine.Verbose = emu.Verbose

	emu.Machine.Reset()
	emu.Tape.Rewind()

	for _, rom := range emu.Roms {
		err = rom.Apply(emu.Machine.Memory)
		if err != nil {
			return
		}
		if emu.Verbose {
			log.Printf("emulator: rom %v cells at %v", len(rom.Data), rom.Address)
		}
	}

	err = emu.Machine.Load(emu.Program)
	if err != nil {
		return
	}

	return
}

// Steps returns the total instructions executed since a reset.
func (emu *Emulator) Steps() int {
	return emu.Machine.Steps
}

// LineNo returns the source line of the next instruction of the current routine.
func (emu *Emulator) LineNo() int {
	routine, pc, ok := emu.Machine.Current()
	if !ok {
		return 0
	}

	return emu.Program.LineNo(routine, pc)
}

// Tick performs a single step of the machine.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set machine verbosity
	emu.Machine.Verbose = emu.Verbose

	routine, pc, ok := emu.Machine.Current()
	if !ok && emu.Machine.Fault == nil {
		done = true
		return
	}

	defer func() {
		if err == nil {
			return
		}
		var ei vm.ErrInstruction
		if errors.As(err, &ei) {
			routine = ei.Routine
			pc = ei.Pc
		}
		name := ""
		if routine >= 0 && routine < len(emu.Machine.Routine) {
			name = emu.Machine.Routine[routine].Name
		}
		err = &ErrRuntime{Routine: name, Pc: pc, LineNo: emu.Program.LineNo(routine, pc), Err: err}
	}()

	if ok && emu.Machine.Routine[routine].Empty() {
		err = ErrStalled
		return
	}

	if emu.Limit > 0 && emu.Machine.Steps >= emu.Limit {
		err = ErrStepLimit
		return
	}

	err = emu.Machine.Step()
	if err != nil {
		return
	}

	done = emu.Machine.Stack.Empty()
	return
}

// Run steps the machine until it halts, the context is done, or an error occurs.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for n := 0; ; n++ {
		if n%POLL_STEPS == 0 {
			err = ctx.Err()
			if err != nil {
				return
			}
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
