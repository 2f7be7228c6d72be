package vm

// Routine is an instance of a routine definition.
//
// Code is shared, by reference, with every other instance of the same
// definition and is never modified. Pc is private to the instance.
type Routine struct {
	Name string        // Name of the routine definition.
	Code []Instruction // Shared instruction sequence.
	Pc   int           // Index of the next instruction to execute.
}

// Empty returns true if the routine has no code.
func (r *Routine) Empty() bool {
	return len(r.Code) == 0
}

// Boundary returns true if the program counter is at or past the end of the code.
func (r *Routine) Boundary() bool {
	return r.Pc >= len(r.Code)
}
