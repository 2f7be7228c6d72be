package io

import (
	"io"
	"unicode/utf8"
)

// Tape writes runes, UTF-8 encoded, to an output stream in order.
type Tape struct {
	Output io.Writer
	Flush  bool // If set, flush the output after every rune.

	count int
}

var _ Channel = (*Tape)(nil)

// Rewind resets the count of runes sent; the output cannot be rewound.
func (tc *Tape) Rewind() {
	tc.count = 0
}

// Count returns the number of runes sent since the last rewind.
func (tc *Tape) Count() int {
	return tc.count
}

// Send encodes a rune to the output stream.
func (tc *Tape) Send(value rune) (err error) {
	if tc.Output == nil {
		return ErrTapeMissing
	}

	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], value)
	_, err = tc.Output.Write(buf[:n])
	if err != nil {
		return
	}

	tc.count++

	if tc.Flush {
		if flusher, ok := tc.Output.(interface{ Flush() error }); ok {
			err = flusher.Flush()
		}
	}

	return
}
