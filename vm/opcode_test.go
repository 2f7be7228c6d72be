package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOp(t *testing.T) {
	assert := assert.New(t)

	for name, op := range opMap {
		assert.Equal(name, op.String())
		assert.True(op.Valid(), name)
	}

	assert.Equal(13, len(opMap))
	assert.False(Op(13).Valid())
	assert.False(Op(-1).Valid())
	assert.Equal("Op(13)", Op(13).String())

	assert.True(OP_IND.Indirect())
	assert.True(OP_DED.Indirect())
	assert.True(OP_TOD.Indirect())
	assert.True(OP_FRD.Indirect())
	assert.False(OP_INC.Indirect())
	assert.False(OP_CAL.Indirect())
}

func TestInstruction_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("inc 5", MakeInstruction(OP_INC, 5).String())
	assert.Equal("sez -1", MakeInstruction(OP_SEZ, -1).String())
	assert.Equal("cal 0", Instruction{Op: OP_CAL}.String())
}
