package vm

import (
	"fmt"
)

// Op is an instruction operation.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_INC = Op(0)  // inc
	OP_DEC = Op(1)  // dec
	OP_IND = Op(2)  // ind
	OP_DED = Op(3)  // ded
	OP_TOZ = Op(4)  // toz
	OP_FRZ = Op(5)  // frz
	OP_TOD = Op(6)  // tod
	OP_FRD = Op(7)  // frd
	OP_SEZ = Op(8)  // sez
	OP_PRI = Op(9)  // pri
	OP_CAL = Op(10) // cal
	OP_MAY = Op(11) // may
	OP_NMY = Op(12) // nmy
)

// opMap maps assembler mnemonics to operations.
var opMap = map[string]Op{
	"inc": OP_INC,
	"dec": OP_DEC,
	"ind": OP_IND,
	"ded": OP_DED,
	"toz": OP_TOZ,
	"frz": OP_FRZ,
	"tod": OP_TOD,
	"frd": OP_FRD,
	"sez": OP_SEZ,
	"pri": OP_PRI,
	"cal": OP_CAL,
	"may": OP_MAY,
	"nmy": OP_NMY,
}

// Valid returns true if the operation is part of the instruction set.
func (op Op) Valid() bool {
	return op >= OP_INC && op <= OP_NMY
}

// Indirect returns true if the operand names a cell holding an address.
func (op Op) Indirect() bool {
	switch op {
	case OP_IND, OP_DED, OP_TOD, OP_FRD:
		return true
	}
	return false
}

// Instruction is a single operation and its operand.
//
// The operand is a literal for OP_SEZ, a routine instance index for OP_CAL,
// and a memory address for everything else.
type Instruction struct {
	Op  Op
	Arg int32
}

// MakeInstruction creates an instruction.
func MakeInstruction(op Op, arg int32) Instruction {
	return Instruction{Op: op, Arg: arg}
}

// String returns the assembly language representation of this instruction.
func (ins Instruction) String() string {
	return fmt.Sprintf("%v %d", ins.Op, ins.Arg)
}
