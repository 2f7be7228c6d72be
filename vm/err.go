package vm

import (
	"errors"

	"github.com/ezrec/flstep/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrHalted    = errors.New(f("machine halted"))
	ErrCallDepth = errors.New(f("call depth exceeded"))
	ErrOpInvalid = errors.New(f("op invalid"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrDefSyntax          = errors.New(f("def syntax"))
	ErrDefMissing         = errors.New(f("instruction outside of def"))
	ErrMainMissing        = errors.New(f("main not defined"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrInvalidAddress is returned when an operand, or a cell read as an
// address, is outside of memory.
type ErrInvalidAddress struct {
	Address int32
}

func (err ErrInvalidAddress) Error() string {
	return f("invalid address %v", int64(err.Address))
}

// ErrInvalidPrintValue is returned when a printed cell does not hold a
// Unicode scalar value.
type ErrInvalidPrintValue struct {
	Value int32
}

func (err ErrInvalidPrintValue) Error() string {
	return f("invalid print value %v", int64(err.Value))
}

// ErrInvalidRoutineIndex is returned when a call names a routine instance
// that does not exist.
type ErrInvalidRoutineIndex struct {
	Index int32
}

func (err ErrInvalidRoutineIndex) Error() string {
	return f("invalid routine index %v", int64(err.Index))
}

// ErrInstruction locates the instruction that faulted.
type ErrInstruction struct {
	Routine     int // Routine instance index.
	Pc          int // Program counter of the instruction.
	Instruction Instruction
}

func (err ErrInstruction) Error() string {
	return f("routine %v pc %v '%v'", err.Routine, err.Pc, err.Instruction.String())
}

type ErrRoutineMissing string

func (err ErrRoutineMissing) Error() string {
	return f("routine %v missing", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
