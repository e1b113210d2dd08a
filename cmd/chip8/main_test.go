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

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/senojj/emul8/chip8"
	"github.com/senojj/emul8/internal/cli"
)

func bootTestProcessor(t *testing.T, logger *log.Logger, rom []byte) *chip8.Processor {
	t.Helper()

	cpu := chip8.New(chip8.WithSeed(1), chip8.WithLogger(logger))
	assert.NoError(t, cpu.Boot(rom))
	return cpu
}

func TestRunHeadless(t *testing.T) {
	logger := log.NewTestLogger(t)
	// Draw the glyph for 0 at (0, 0), then spin.
	rom := []byte{0x60, 0x00, 0xF0, 0x29, 0xD0, 0x05, 0x12, 0x06}
	cpu := bootTestProcessor(t, logger, rom)

	opts := cli.Options{ClockRate: 700, Cycles: 100}
	var buf bytes.Buffer
	assert.NoError(t, runHeadless(context.Background(), logger, cpu, opts, &buf))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "####"+strings.Repeat(".", 60), lines[0])
	assert.Equal(t, "#..#"+strings.Repeat(".", 60), lines[1])
	assert.Equal(t, strings.Repeat(".", 64), lines[5])
	assert.Contains(t, buf.String(), "PC: 206")
}

func TestRunHeadless_TicksTimers(t *testing.T) {
	logger := log.NewTestLogger(t)
	// Set the delay timer to 10, then spin.
	rom := []byte{0x60, 0x0A, 0xF0, 0x15, 0x12, 0x04}
	cpu := bootTestProcessor(t, logger, rom)

	// 120 instructions at 60 per tick are two timer ticks.
	opts := cli.Options{ClockRate: 3600, Cycles: 120}
	var buf bytes.Buffer
	assert.NoError(t, runHeadless(context.Background(), logger, cpu, opts, &buf))
	assert.Equal(t, uint8(8), cpu.Delay())
}

func TestRunHeadless_StopsAtBreakpoint(t *testing.T) {
	logger := log.NewTestLogger(t)
	rom := []byte{0x60, 0x01, 0x70, 0x01, 0x12, 0x02}
	cpu := bootTestProcessor(t, logger, rom)

	opts := cli.Options{ClockRate: 700, Cycles: 1000, Breakpoints: []uint16{0x204}}
	var buf bytes.Buffer
	assert.NoError(t, runHeadless(context.Background(), logger, cpu, opts, &buf))
	assert.Equal(t, uint16(0x204), cpu.ProgramCounter())
	assert.Equal(t, uint8(2), cpu.Register(0))
}

func TestRunHeadless_Halts(t *testing.T) {
	// A halt is logged at error level, which fails tests using the test logger.
	cfg := log.DefaultConfig()
	cfg.Level = log.ErrorLevel
	logger := log.NewWithConfig(cfg)
	cpu := bootTestProcessor(t, logger, []byte{0x00, 0xEE})

	opts := cli.Options{ClockRate: 700, Cycles: 10}
	var buf bytes.Buffer
	err := runHeadless(context.Background(), logger, cpu, opts, &buf)
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))
	assert.NotEmpty(t, buf.String())
}

func TestRunHeadless_Cancelled(t *testing.T) {
	logger := log.NewTestLogger(t)
	cpu := bootTestProcessor(t, logger, []byte{0x12, 0x00})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := cli.Options{ClockRate: 700, Cycles: 10}
	var buf bytes.Buffer
	err := runHeadless(ctx, logger, cpu, opts, &buf)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunHeadless_DumpMemory(t *testing.T) {
	logger := log.NewTestLogger(t)
	cpu := bootTestProcessor(t, logger, []byte{0x60, 0xAB, 0x12, 0x02})

	opts := cli.Options{ClockRate: 700, Cycles: 4, DumpMemory: true}
	var buf bytes.Buffer
	assert.NoError(t, runHeadless(context.Background(), logger, cpu, opts, &buf))

	out := buf.String()
	assert.Contains(t, out, "0x000: 0000 0000 0000 0000 0000 0000 0000 0000\n")
	assert.Contains(t, out, "0x010: f090 9090 f020 6020 2070 f010 f080 f0f0\n")
	assert.Contains(t, out, "0x200: 60ab 1202 0000 0000 0000 0000 0000 0000\n")
	assert.Contains(t, out, "0xFF0: ")
}

func TestRunHeadless_NoDumpByDefault(t *testing.T) {
	logger := log.NewTestLogger(t)
	cpu := bootTestProcessor(t, logger, []byte{0x12, 0x00})

	opts := cli.Options{ClockRate: 700, Cycles: 4}
	var buf bytes.Buffer
	assert.NoError(t, runHeadless(context.Background(), logger, cpu, opts, &buf))
	assert.False(t, strings.Contains(buf.String(), "0x200: "))
}

func TestProcessorOptions(t *testing.T) {
	logger := log.NewTestLogger(t)
	quirks := chip8.Quirks{Shift: true, JumpWithOffset: true}

	cpu := chip8.New(processorOptions(logger, cli.Options{Quirks: quirks, Seed: 7, SeedSet: true})...)
	assert.Equal(t, quirks, cpu.Quirks())
}

func TestProcessorOptions_ZeroSeed(t *testing.T) {
	logger := log.NewTestLogger(t)
	opts := cli.Options{Seed: 0, SeedSet: true}

	a := chip8.New(processorOptions(logger, opts)...)
	b := chip8.New(processorOptions(logger, opts)...)
	rom := []byte{0xC0, 0xFF, 0xC1, 0xFF, 0xC2, 0xFF, 0xC3, 0xFF}
	assert.NoError(t, a.Boot(rom))
	assert.NoError(t, b.Boot(rom))

	for range 4 {
		_, err := a.Step()
		assert.NoError(t, err)
		_, err = b.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, a.Registers(), b.Registers())
}
