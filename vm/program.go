package vm

import (
	"iter"
	"slices"
)

// Function is a routine definition, as written in the source.
type Function struct {
	Name   string
	Code   []Instruction
	LineNo []int // Source line of each instruction.
}

// Instance is a call-site bound instantiation of a Function.
type Instance struct {
	Function int // Index into Program.Functions
	LineNo   int // Source line of the call site; zero for the root.
}

// Program is a linked program, ready to be loaded into a Machine.
type Program struct {
	Functions []Function
	Instances []Instance
	Root      int // Instance index of the root routine.
}

// Function returns the definition of a routine instance, or nil.
func (prog *Program) Function(routine int) *Function {
	if routine < 0 || routine >= len(prog.Instances) {
		return nil
	}

	index := prog.Instances[routine].Function
	if index < 0 || index >= len(prog.Functions) {
		return nil
	}

	return &prog.Functions[index]
}

// LineNo returns the source line of an instruction of a routine instance,
// or zero if unknown.
func (prog *Program) LineNo(routine int, pc int) int {
	fn := prog.Function(routine)
	if fn == nil || pc < 0 || pc >= len(fn.LineNo) {
		return 0
	}

	return fn.LineNo[pc]
}

// Validate checks the instance table and every call operand.
func (prog *Program) Validate() (err error) {
	if prog.Function(prog.Root) == nil {
		err = ErrInvalidRoutineIndex{Index: int32(prog.Root)}
		return
	}

	for n := range prog.Instances {
		if prog.Function(n) == nil {
			err = ErrInvalidRoutineIndex{Index: int32(n)}
			return
		}
	}

	for _, fn := range prog.Functions {
		for pc, ins := range fn.Code {
			if !ins.Op.Valid() {
				err = &ErrSyntax{LineNo: fn.lineNo(pc), Line: fn.Name, Err: ErrOpInvalid}
				return
			}
			if ins.Op != OP_CAL {
				continue
			}
			if ins.Arg < 0 || int(ins.Arg) >= len(prog.Instances) {
				err = &ErrSyntax{LineNo: fn.lineNo(pc), Line: ins.String(), Err: ErrInvalidRoutineIndex{Index: ins.Arg}}
				return
			}
		}
	}

	return
}

// lineNo returns the source line of an instruction, or zero.
func (fn *Function) lineNo(pc int) int {
	if pc < len(fn.LineNo) {
		return fn.LineNo[pc]
	}
	return 0
}

// Routines returns a fresh routine table, one entry per instance.
// Instances of the same function share its code.
func (prog *Program) Routines() (routines []Routine) {
	code := make([][]Instruction, len(prog.Functions))
	for n, fn := range prog.Functions {
		code[n] = slices.Clip(fn.Code)
	}

	routines = make([]Routine, len(prog.Instances))
	for n, inst := range prog.Instances {
		routines[n] = Routine{
			Name: prog.Functions[inst.Function].Name,
			Code: code[inst.Function],
		}
	}

	return
}

// Calls iterates over the call sites, yielding the instance index and the
// name of the called function.
func (prog *Program) Calls() iter.Seq2[int, string] {
	return func(yield func(routine int, name string) bool) {
		for n := range prog.Instances {
			if n == prog.Root {
				continue
			}
			fn := prog.Function(n)
			if fn == nil {
				continue
			}
			if !yield(n, fn.Name) {
				return
			}
		}
	}
}
