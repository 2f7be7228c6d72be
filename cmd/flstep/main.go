// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/flstep/emulator"
	"github.com/ezrec/flstep/io"
	"github.com/ezrec/flstep/translate"
	"github.com/ezrec/flstep/vm"
)

// romFlag collects ADDR=FILE memory preloads.
type romFlag struct {
	encoding io.RomEncoding
	roms     *[]*io.Rom
}

func (rf romFlag) String() string {
	return ""
}

func (rf romFlag) Set(value string) (err error) {
	addr, file, ok := strings.Cut(value, "=")
	if !ok {
		addr, file = fmt.Sprintf("%v", emulator.ROM_ADDRESS), value
	}
	address, err := strconv.ParseInt(addr, 0, 32)
	if err != nil {
		return
	}

	inf, err := os.Open(file)
	if err != nil {
		return
	}
	defer inf.Close()

	rom, err := io.ReadRom(int(address), inf, rf.encoding)
	if err != nil {
		return
	}

	*rf.roms = append(*rf.roms, rom)
	return
}

// defineFlag collects NAME=VALUE predefines.
type defineFlag map[string]string

func (df defineFlag) String() string {
	return ""
}

func (df defineFlag) Set(value string) (err error) {
	name, val, ok := strings.Cut(value, "=")
	if !ok {
		val = "1"
	}
	df[name] = val
	return
}

func main() {
	var compile string
	var output string
	var limit int
	var memory uint
	var verbose bool
	var roms []*io.Rom
	defines := defineFlag{}

	flag.StringVar(&compile, "c", "main.fl", ".fl file to compile")
	flag.StringVar(&output, "o", "-", "Output")
	flag.Var(romFlag{encoding: io.ROM_ENCODING_BYTES, roms: &roms}, "d", "ADDR=FILE raw data to preload")
	flag.Var(romFlag{encoding: io.ROM_ENCODING_BRAINFUCK, roms: &roms}, "b", "ADDR=FILE brainfuck program to preload")
	flag.Var(defines, "D", "NAME=VALUE assembler predefine")
	flag.IntVar(&limit, "n", 0, "Maximum instructions to execute (0 is unlimited)")
	flag.UintVar(&memory, "m", emulator.MEMORY_SIZE, "Memory size in cells")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	emu := emulator.NewEmulatorSize(memory)
	emu.Verbose = verbose
	emu.Limit = limit
	emu.Roms = roms

	inf, err := os.Open(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	asm := &vm.Assembler{Verbose: verbose}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}
	for name, value := range defines {
		asm.Predefine(name, value)
	}
	emu.Program, err = asm.Parse(inf)
	inf.Close()
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	var out *bufio.Writer
	if output == "-" {
		out = bufio.NewWriter(os.Stdout)
		// Interactive output is shown as it is printed.
		emu.Tape.Flush = term.IsTerminal(int(os.Stdout.Fd()))
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		out = bufio.NewWriter(ouf)
	}
	defer out.Flush()
	emu.Tape.Output = out

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	out.Flush()
	if verbose {
		translate.Fprintln(os.Stderr, "%v: %v steps, %v runes printed", compile, emu.Steps(), emu.Tape.Count())
	}
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}
}
