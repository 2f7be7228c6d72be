package emulator

import (
	"errors"

	"github.com/ezrec/flstep/translate"
)

var f = translate.From

var (
	ErrStalled   = errors.New(f("root routine has no code"))
	ErrStepLimit = errors.New(f("step limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Routine string
	Pc      int
	LineNo  int
	Err     error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v:%d %v", err.LineNo, err.Routine, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
