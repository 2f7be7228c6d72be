// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":      "0",
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
	"STACK_LIMIT": fmt.Sprintf("%v", STACK_LIMIT),
}

// callSite is a 'cal' awaiting linking.
type callSite struct {
	Name   string
	LineNo int
	Line   string
}

// Assembler is a single pass macro assembler for .fl programs.
type Assembler struct {
	Verbose  bool       // If set, verbosely logs the assembler actions.
	Function []Function // Routine definitions, in order of first appearance.

	predefine map[string]string   // Predefines
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	index   map[string]int // Map of routine names to Function indexes.
	current int            // Function being defined, or -1.
	calls   []callSite     // Call sites, in instance order.
	line    string         // Line being parsed.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reCharacter  = regexp.MustCompile(`'(?:\\.|[^'\\])'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int32, err error) {
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int32(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 int32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	err = nil
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < math.MinInt32 || st_int64 > math.MaxInt32 {
		err = ErrParseExpression(expr)
		return
	}
	value = int32(st_int64)
	return
}

// stripComment removes a ';' comment, ignoring ';' inside character quotes.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '\'':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}

	return text
}

// charValue converts a quoted character to its code point.
func charValue(word string) (value rune, ok bool) {
	str := word[1 : len(word)-1]
	if str[0] == '\\' {
		switch str[1:] {
		case "\\":
			value = '\\'
		case "'":
			value = '\''
		case "n":
			value = '\n'
		case "r":
			value = '\r'
		case "t":
			value = '\t'
		case "e":
			value = '\033'
		case "0":
			value = 0
		default:
			return
		}
		ok = true
		return
	}

	runes := []rune(str)
	if len(runes) != 1 {
		return
	}

	value = runes[0]
	ok = true
	return
}

// parseLine parses a single line into words, expanding macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		value, ok := charValue(word)
		if !ok {
			return word
		}
		return fmt.Sprintf("%d", value)
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words[1:] {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[1+n] = equate
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			words, err = asm.parseLine(line, lineno)
			if err == nil {
				err = asm.parseWords(words, lineno)
			}
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a linked Program.
//
// Every 'cal' creates a new routine instance, with its own program counter,
// of the named routine. The root instance of 'main' is appended last.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Function = nil
	asm.index = make(map[string]int)
	asm.current = -1
	asm.calls = nil
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		asm.line = line
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of call sites to routine instances.
	prog = &Program{
		Functions: asm.Function,
		Instances: make([]Instance, 0, len(asm.calls)+1),
	}
	for _, call := range asm.calls {
		index, ok := asm.index[call.Name]
		if !ok {
			lineno = call.LineNo
			line = call.Line
			prog = nil
			err = ErrRoutineMissing(call.Name)
			return
		}
		prog.Instances = append(prog.Instances, Instance{Function: index, LineNo: call.LineNo})
	}

	root, ok := asm.index["main"]
	if !ok {
		prog = nil
		err = ErrMainMissing
		return
	}
	prog.Root = len(prog.Instances)
	prog.Instances = append(prog.Instances, Instance{Function: root})

	if asm.Verbose {
		log.Printf("asm: %v routines, %v instances", len(prog.Functions), len(prog.Instances))
		for routine, name := range prog.Calls() {
			log.Printf("asm: %v#%v called from line %v", name, routine, prog.Instances[routine].LineNo)
		}
	}

	return
}

// define starts, or reopens, a routine definition.
func (asm *Assembler) define(name string) {
	index, ok := asm.index[name]
	if !ok {
		index = len(asm.Function)
		asm.Function = append(asm.Function, Function{Name: name})
		asm.index[name] = index
	}

	asm.current = index
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	if words[0] == "def" {
		if len(words) != 2 {
			err = ErrDefSyntax
			return
		}
		asm.define(words[1])
		return
	}

	op, ok := opMap[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	if len(words) < 2 {
		err = ErrOpcodeValueMissing
		return
	}
	if len(words) > 2 {
		err = ErrOpcodeExtraArgs
		return
	}

	if asm.current < 0 {
		err = ErrDefMissing
		return
	}

	var arg int32
	if op == OP_CAL {
		arg = int32(len(asm.calls))
		asm.calls = append(asm.calls, callSite{Name: words[1], LineNo: lineno, Line: asm.line})
	} else {
		arg, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
	}

	fn := &asm.Function[asm.current]
	fn.Code = append(fn.Code, MakeInstruction(op, arg))
	fn.LineNo = append(fn.LineNo, lineno)

	return
}
