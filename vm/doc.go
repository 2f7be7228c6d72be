// Package vm implements the single-step machine and assembler for flstep.
//
// The machine has a flat memory of signed 32-bit cells, a table of routine
// instances, and a call stack. Every routine instance pairs a code sequence,
// shared with all other instances of the same definition, with its own
// program counter. A call does not run its target to completion: it executes
// exactly one instruction of the target and returns, so repeatedly called
// instances behave as cooperative coroutines.
//
// The assembler reads the line oriented .fl text format, and creates one
// routine instance for every call site, supporting macros, equates, and
// compile-time expression evaluation.
package vm
