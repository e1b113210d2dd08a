/*
 * Copyright 2026 Joshua Jones <joshua.jones.software@gmail.com>
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      www.apache.org
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/senojj/emul8/chip8"
	"github.com/senojj/emul8/runner"
)

// DefaultCycles is the number of instructions a headless run executes when
// no count is given.
const DefaultCycles = 10000

// Options contains all command line controlled settings.
type Options struct {
	Input  string
	Quirks chip8.Quirks

	Seed          uint64
	SeedSet       bool
	ClockRate     int
	Paused        bool
	Breakpoints   []uint16
	Trace         bool
	HaltOnUnknown bool

	Headless   bool
	Cycles     int
	DumpMemory bool
	Disasm     bool

	Debug   bool
	Quiet   bool
	Version bool
}

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (Options, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts Options
	var breakpoints string
	readOptionFlags(flags, &opts, &breakpoints)

	err := flags.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, &UsageError{flags: flags}
		}
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if opts.Version {
		return opts, nil
	}

	flags.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.SeedSet = true
		}
	})

	args := flags.Args()
	if len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}
	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	if err := normalizeOptions(&opts, breakpoints); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8 [options] <rom>\n\n")
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after the ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions validates option values and parses the breakpoint list
func normalizeOptions(opts *Options, breakpoints string) error {
	if opts.ClockRate <= 0 {
		return fmt.Errorf("invalid clock rate %d: must be positive", opts.ClockRate)
	}
	if opts.Cycles < 0 {
		return fmt.Errorf("invalid cycle count %d: must not be negative", opts.Cycles)
	}

	addrs, err := parseBreakpoints(breakpoints)
	if err != nil {
		return err
	}
	opts.Breakpoints = addrs
	return nil
}

func parseBreakpoints(s string) ([]uint16, error) {
	if s == "" {
		return nil, nil
	}

	var addrs []uint16
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		addr, err := strconv.ParseUint(field, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing breakpoint '%s': %w", field, err)
		}
		if addr >= uint64(chip8.MemorySize) {
			return nil, fmt.Errorf("breakpoint 0x%X is outside of memory", addr)
		}
		addrs = append(addrs, uint16(addr))
	}
	return addrs, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *Options, breakpoints *string) {
	flags.BoolVar(&opts.Quirks.Shift, "quirk-shift", false, "shift VX in place instead of loading VY first (8XY6, 8XYE)")
	flags.BoolVar(&opts.Quirks.LoadStore, "quirk-loadstore", false, "leave I unchanged after register store and load (FX55, FX65)")
	flags.BoolVar(&opts.Quirks.JumpWithOffset, "quirk-jump", false, "add VX instead of V0 to the jump target (BNNN)")
	flags.BoolVar(&opts.Quirks.AddWithoutCarry, "quirk-nocarry", false, "do not set the carry flag on register addition (8XY4)")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the random number generator, a random seed is picked if not set")
	flags.IntVar(&opts.ClockRate, "hz", runner.DefaultClockRate, "instructions executed per second")
	flags.BoolVar(&opts.Paused, "paused", false, "start with execution paused")
	flags.StringVar(breakpoints, "break", "", "comma separated list of addresses to pause at, for example 0x200,0x2A4")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&opts.HaltOnUnknown, "halt-on-unknown", false, "stop on unknown instructions instead of skipping them")
	flags.BoolVar(&opts.Headless, "headless", false, "run without a window and print the display when done")
	flags.IntVar(&opts.Cycles, "cycles", DefaultCycles, "number of instructions to execute in headless mode")
	flags.BoolVar(&opts.DumpMemory, "dump-memory", false, "print a hex dump of memory after a headless run")
	flags.BoolVar(&opts.Disasm, "disasm", false, "print a disassembly listing of the ROM and exit")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Version, "version", false, "print the version and exit")
}
