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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/senojj/emul8/chip8"
	"github.com/senojj/emul8/internal/cli"
	"github.com/senojj/emul8/monitor"
	"github.com/senojj/emul8/runner"
	"golang.org/x/term"
)

// runHeadless executes the configured number of cycles as fast as possible,
// ticking the timers once every clock rate / 60 instructions, and prints the
// final display and registers, followed by memory when requested.
func runHeadless(ctx context.Context, logger *log.Logger, cpu *chip8.Processor, opts cli.Options, w io.Writer) error {
	r := runner.New(cpu, logger, runnerOptions(opts)...)

	perTick := max(opts.ClockRate/runner.DefaultTimerRate, 1)
	var (
		executed int
		runErr   error
	)
	for executed < opts.Cycles {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.StepN(min(perTick, opts.Cycles-executed))
		executed += n
		if err != nil {
			runErr = err
			break
		}
		if r.Paused() {
			break
		}
		r.TickTimers()
	}

	logger.Info("Headless run finished", log.Int("cycles", executed))

	on, off := glyphs(w)
	state, display := r.Snapshot()
	if err := monitor.WriteDisplay(w, display, on, off); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\n", monitor.Registers(state)); err != nil {
		return fmt.Errorf("writing registers: %w", err)
	}

	if opts.DumpMemory {
		mem := make([]byte, chip8.MemorySize)
		r.ReadMemory(0, mem)
		if _, err := fmt.Fprintln(w); err != nil {
			return fmt.Errorf("writing memory dump: %w", err)
		}
		if err := monitor.WriteMemory(w, mem, 0); err != nil {
			return err
		}
	}
	return runErr
}

// glyphs picks block characters when writing to a terminal wide enough to
// hold the display and plain ASCII otherwise.
func glyphs(w io.Writer) (rune, rune) {
	f, ok := w.(*os.File)
	if !ok {
		return '#', '.'
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return '#', '.'
	}
	if width, _, err := term.GetSize(fd); err == nil && width < chip8.Width {
		return '#', '.'
	}
	return '█', ' '
}
