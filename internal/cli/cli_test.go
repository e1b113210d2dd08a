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

package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/senojj/emul8/chip8"
)

func parse(t *testing.T, args ...string) (Options, error) {
	t.Helper()

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"chip8"}, args...)

	return ParseFlags()
}

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parse(t, "game.ch8")
	assert.NoError(t, err)

	assert.Equal(t, "game.ch8", opts.Input)
	assert.Equal(t, chip8.Quirks{}, opts.Quirks)
	assert.Equal(t, uint64(0), opts.Seed)
	assert.False(t, opts.SeedSet)
	assert.Equal(t, 700, opts.ClockRate)
	assert.Equal(t, DefaultCycles, opts.Cycles)
	assert.Empty(t, opts.Breakpoints)
	assert.False(t, opts.Headless)
	assert.False(t, opts.Disasm)
}

func TestParseFlags_Quirks(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want chip8.Quirks
	}{
		{"shift", []string{"-quirk-shift"}, chip8.Quirks{Shift: true}},
		{"loadstore", []string{"-quirk-loadstore"}, chip8.Quirks{LoadStore: true}},
		{"jump", []string{"-quirk-jump"}, chip8.Quirks{JumpWithOffset: true}},
		{"nocarry", []string{"-quirk-nocarry"}, chip8.Quirks{AddWithoutCarry: true}},
		{
			"all",
			[]string{"-quirk-shift", "-quirk-loadstore", "-quirk-jump", "-quirk-nocarry"},
			chip8.Quirks{Shift: true, LoadStore: true, JumpWithOffset: true, AddWithoutCarry: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parse(t, append(tt.args, "game.ch8")...)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, opts.Quirks)
		})
	}
}

func TestParseFlags_Machine(t *testing.T) {
	opts, err := parse(t, "-seed", "42", "-hz", "1000", "-paused", "-trace", "-halt-on-unknown",
		"-break", "0x200, 0x2A4,768", "game.ch8")
	assert.NoError(t, err)

	assert.Equal(t, uint64(42), opts.Seed)
	assert.True(t, opts.SeedSet)
	assert.Equal(t, 1000, opts.ClockRate)
	assert.True(t, opts.Paused)
	assert.True(t, opts.Trace)
	assert.True(t, opts.HaltOnUnknown)
	assert.Equal(t, []uint16{0x200, 0x2A4, 0x300}, opts.Breakpoints)
}

func TestParseFlags_Modes(t *testing.T) {
	opts, err := parse(t, "-headless", "-cycles", "50", "-dump-memory", "-q", "game.ch8")
	assert.NoError(t, err)
	assert.True(t, opts.Headless)
	assert.True(t, opts.DumpMemory)
	assert.Equal(t, 50, opts.Cycles)
	assert.True(t, opts.Quiet)

	opts, err = parse(t, "-disasm", "-debug", "game.ch8")
	assert.NoError(t, err)
	assert.True(t, opts.Disasm)
	assert.True(t, opts.Debug)
}

func TestParseFlags_ZeroSeed(t *testing.T) {
	opts, err := parse(t, "-seed", "0", "game.ch8")
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), opts.Seed)
	assert.True(t, opts.SeedSet)
}

func TestParseFlags_EmptyTrailingArgument(t *testing.T) {
	opts, err := parse(t, "game.ch8", "")
	assert.NoError(t, err)
	assert.Equal(t, "game.ch8", opts.Input)
}

func TestParseFlags_Version(t *testing.T) {
	opts, err := parse(t, "-version")
	assert.NoError(t, err)
	assert.True(t, opts.Version)
}

func TestParseFlags_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no rom", nil},
		{"unknown flag", []string{"-unknown", "game.ch8"}},
		{"flag after rom", []string{"game.ch8", "-debug"}},
		{"help", []string{"-h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
		})
	}
}

func TestParseFlags_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"zero clock rate", []string{"-hz", "0", "game.ch8"}, "invalid clock rate"},
		{"negative cycles", []string{"-cycles", "-1", "game.ch8"}, "invalid cycle count"},
		{"breakpoint not a number", []string{"-break", "start", "game.ch8"}, "parsing breakpoint"},
		{"breakpoint outside memory", []string{"-break", "0x1000", "game.ch8"}, "outside of memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			assert.ErrorContains(t, err, tt.msg)

			var usageErr *UsageError
			assert.False(t, errors.As(err, &usageErr))
		})
	}
}
