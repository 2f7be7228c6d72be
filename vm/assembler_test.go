package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func parse(t *testing.T, asm *Assembler, program []string) (prog *Program) {
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(t, err)
	if err != nil {
		t.Fatal(err)
	}
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader(""))
	assert.ErrorIs(err, ErrMainMissing)

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("65536", asm.Equate["MEMORY_SIZE"])
	assert.Equal("4096", asm.Equate["STACK_LIMIT"])
}

func TestAssemblerProgram(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"; count up",
		".equ OUT 1",
		"def tick",
		"  inc OUT",
		"\tpri OUT ; print it",
		"def main",
		"  sez 'A'",
		"  frz OUT",
		"  cal tick",
		"  cal tick",
	}

	prog := parse(t, asm, program)

	expected := &Program{
		Functions: []Function{
			{Name: "tick", Code: []Instruction{
				{OP_INC, 1},
				{OP_PRI, 1},
			}, LineNo: []int{4, 5}},
			{Name: "main", Code: []Instruction{
				{OP_SEZ, 'A'},
				{OP_FRZ, 1},
				{OP_CAL, 0},
				{OP_CAL, 1},
			}, LineNo: []int{7, 8, 9, 10}},
		},
		Instances: []Instance{{Function: 0, LineNo: 9}, {Function: 0, LineNo: 10}, {Function: 1}},
		Root:      2,
	}

	assert.Equal(expected, prog)
	assert.NoError(prog.Validate())
}

func TestAssemblerCallSites(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{Verbose: true}
	program := []string{
		"def main",
		"cal a",
		"cal b",
		"cal a",
		"def a",
		"cal b",
		"def b",
		"inc 1",
	}

	prog := parse(t, asm, program)

	// One instance per call site, the root last.
	assert.Equal([]Instance{
		{Function: 1, LineNo: 2},
		{Function: 2, LineNo: 3},
		{Function: 1, LineNo: 4},
		{Function: 2, LineNo: 6},
		{Function: 0},
	}, prog.Instances)
	assert.Equal(4, prog.Root)
	assert.Equal([]Instruction{{OP_CAL, 0}, {OP_CAL, 1}, {OP_CAL, 2}}, prog.Functions[0].Code)
	assert.Equal([]Instruction{{OP_CAL, 3}}, prog.Functions[1].Code)
}

func TestAssemblerDefReopen(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"def main",
		"inc 1",
		"def f",
		"inc 2",
		"def main",
		"inc 3",
	}

	prog := parse(t, asm, program)

	assert.Equal(2, len(prog.Functions))
	assert.Equal([]Instruction{{OP_INC, 1}, {OP_INC, 3}}, prog.Functions[0].Code)
	assert.Equal([]int{2, 6}, prog.Functions[0].LineNo)
	assert.Equal([]Instruction{{OP_INC, 2}}, prog.Functions[1].Code)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("TAPE", "7")
	program := []string{
		".equ BASE 100",
		"def main",
		"inc $(BASE + 5)",
		".equ NEXT $(BASE * 2)",
		"sez NEXT",
		"sez $(LINENO * 10)",
		"sez 0x10",
		"sez -0b11",
		"sez '\\n'",
		"sez '世'",
		"pri TAPE",
		"sez $(-MEMORY_SIZE)",
	}

	prog := parse(t, asm, program)

	assert.Equal([]Instruction{
		{OP_INC, 105},
		{OP_SEZ, 200},
		{OP_SEZ, 60},
		{OP_SEZ, 16},
		{OP_SEZ, -3},
		{OP_SEZ, '\n'},
		{OP_SEZ, '世'},
		{OP_PRI, 7},
		{OP_SEZ, -MEMORY_SIZE},
	}, prog.Functions[0].Code)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".macro PUT CELL VALUE",
		"sez VALUE",
		"frz CELL",
		".endm",
		".macro TWICE NAME",
		"cal NAME",
		"cal NAME",
		".endm",
		".macro PUTS CELL",
		"PUT CELL 'h'",
		"PUT CELL $('i' + 0)",
		".endm",
		"def main",
		"PUT 5 'x'",
		"TWICE f",
		"PUTS 2",
		"def f",
		"pri 5",
	}

	prog := parse(t, asm, program)

	assert.Equal([]Instruction{
		{OP_SEZ, 'x'},
		{OP_FRZ, 5},
		{OP_CAL, 0},
		{OP_CAL, 1},
		{OP_SEZ, 'h'},
		{OP_FRZ, 2},
		{OP_SEZ, 'i'},
		{OP_FRZ, 2},
	}, prog.Functions[0].Code)
	assert.Equal([]int{2, 3, 6, 7, 2, 3, 2, 3}, prog.Functions[0].LineNo)
	assert.Equal(3, len(prog.Instances))

	// Macro arguments do not leak out.
	_, ok := asm.Equate["CELL"]
	assert.False(ok)
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
		err  error
	}){
		{"inc 1", 1, ErrDefMissing},
		{"def main\nfoo 1", 2, ErrInstructionInvalid},
		{"def main\ninc", 2, ErrOpcodeValueMissing},
		{"def main\ninc 1 2", 2, ErrOpcodeExtraArgs},
		{"def main\ncal", 2, ErrOpcodeValueMissing},
		{"def main\ninc x", 2, ErrParseNumber("x")},
		{"def main\ninc 0x100000000", 2, ErrParseNumber("0x100000000")},
		{"def main\nsez 'ab'", 2, ErrParseCharacter("'ab'")},
		{"def main\nsez $(\"a\")", 2, ErrParseExpression("\"a\"")},
		{"def main\nsez $(1 << 40)", 2, ErrParseExpression("1 << 40")},
		{"def main\nsez $(nope)", 2, nil},
		{"def\n", 1, ErrDefSyntax},
		{"def a b\n", 1, ErrDefSyntax},
		{".equ\n", 1, ErrEquateSyntax},
		{".equ A\n", 1, ErrEquateSyntax},
		{".equ A 1\n.equ A 2\n", 2, ErrEquateDuplicate},
		{".macro A B\n.endm\ndef main\nA\n", 4, ErrMacroSyntax},
		{".macro A\n.macro B\n", 2, ErrMacroNesting},
		{".macro\n", 1, ErrMacroSyntax},
		{".endm\n", 1, ErrMacroLonelyEndm},
		{".macro A\ninc 1\n", 2, ErrMacroLonely},
		{".macro A\n.endm\n.macro A\n.endm\n", 3, ErrMacroDuplicate},
		{".macro A\nfoo 1\n.endm\ndef main\nA\n", 5, ErrInstructionInvalid},
		{"def main\ncal nowhere\ninc 1\n", 2, ErrRoutineMissing("nowhere")},
		{"def f\ninc 1\n", 2, ErrMainMissing},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
			if entry.err != nil {
				assert.ErrorIs(err, entry.err, entry.prog)
			}
		}
	}
}

func TestAssemblerErrMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader(".macro A\ninc 1\nfoo 1\n.endm\ndef main\nA\n"))

	var em *ErrMacro
	assert.True(errors.As(err, &em))
	assert.Equal("A", em.Macro)
	assert.Equal(3, em.Line)
}

func TestAssemblerRun(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"def tick",
		"inc 1",
		"inc 2",
		"def loop",
		"cal tick",
		"def main",
		"cal loop",
		"cal loop",
		"cal loop",
		"cal tick",
	}

	prog := parse(t, asm, program)

	m := NewMachine(16)
	assert.NoError(m.Load(prog))
	assert.Equal(4, run(t, m, 100))

	// The looped instance advanced three times, the direct call site once.
	assert.Equal(int32(3), m.Memory[1])
	assert.Equal(int32(1), m.Memory[2])
}

func TestAssemblerComment(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"def main ; it's the root",
		"sez ';' ; semicolon",
		"sez '\\'' ; quote",
		"sez ';'",
		"inc 1;no space",
	}

	prog := parse(t, asm, program)

	assert.Equal([]Instruction{
		{OP_SEZ, ';'},
		{OP_SEZ, '\''},
		{OP_SEZ, ';'},
		{OP_INC, 1},
	}, prog.Functions[0].Code)
}
