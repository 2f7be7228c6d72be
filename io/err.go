package io

import (
	"errors"

	"github.com/ezrec/flstep/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrTapeMissing = errors.New(f("tape output missing"))

	// Rom errors
	ErrRomRange    = errors.New(f("rom outside of memory"))
	ErrRomEncoding = errors.New(f("rom encoding unknown"))
)
