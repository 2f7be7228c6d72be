package io

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTape_Send(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	tape := &Tape{Output: out}

	for _, r := range "a\x05é€𝄞" {
		assert.NoError(tape.Send(r))
	}

	assert.Equal("a\x05é€𝄞", out.String())
	assert.Equal(5, tape.Count())

	tape.Rewind()
	assert.Equal(0, tape.Count())
	assert.Equal("a\x05é€𝄞", out.String())
}

func TestTape_Missing(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}
	assert.ErrorIs(tape.Send('a'), ErrTapeMissing)
	assert.Equal(0, tape.Count())
}

func TestTape_Flush(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	buf := bufio.NewWriter(out)

	tape := &Tape{Output: buf}
	assert.NoError(tape.Send('x'))
	assert.Equal(0, out.Len())

	tape.Flush = true
	assert.NoError(tape.Send('y'))
	assert.Equal("xy", out.String())
}

type failWriter struct{}

var errWrite = errors.New("write failed")

func (failWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

func TestTape_WriteError(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Output: failWriter{}}
	assert.ErrorIs(tape.Send('x'), errWrite)
	assert.Equal(0, tape.Count())
}
