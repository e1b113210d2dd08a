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

// Package runner drives a CHIP-8 processor in real time. It owns the
// instruction clock and the 60 Hz timer clock and serializes every access to
// the processor.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/senojj/emul8/chip8"
	"github.com/senojj/emul8/disasm"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultClockRate = 700
	DefaultTimerRate = 60
)

// Runner executes a processor at a fixed instruction rate.
type Runner struct {
	mu  sync.Mutex
	cpu *chip8.Processor

	// dirty is set when the display changed since the last frame was
	// delivered. Guarded by mu.
	dirty bool

	paused atomic.Bool
	logger *log.Logger

	clockRate     int
	timerRate     int
	haltOnUnknown bool
	trace         bool
	breakpoints   set.Set[uint16]
	onFrame       func(chip8.Display)
}

type Option func(*Runner)

// WithClockRate sets the number of instructions executed per second.
func WithClockRate(hz int) Option {
	return func(r *Runner) {
		if hz > 0 {
			r.clockRate = hz
		}
	}
}

// WithTimerRate sets how often per second the delay and sound timers count
// down.
func WithTimerRate(hz int) Option {
	return func(r *Runner) {
		if hz > 0 {
			r.timerRate = hz
		}
	}
}

// WithHaltOnUnknown stops the machine on an unknown instruction instead of
// skipping it.
func WithHaltOnUnknown() Option {
	return func(r *Runner) {
		r.haltOnUnknown = true
	}
}

// WithBreakpoints pauses the runner whenever the program counter reaches one
// of the addresses.
func WithBreakpoints(addrs ...uint16) Option {
	return func(r *Runner) {
		for _, addr := range addrs {
			r.breakpoints.Add(addr)
		}
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace() Option {
	return func(r *Runner) {
		r.trace = true
	}
}

// WithFrameHandler registers a function that receives the display whenever it
// changed, at most once per timer tick. It is called without the runner lock
// held.
func WithFrameHandler(fn func(chip8.Display)) Option {
	return func(r *Runner) {
		r.onFrame = fn
	}
}

func New(cpu *chip8.Processor, logger *log.Logger, opts ...Option) *Runner {
	r := &Runner{
		cpu:         cpu,
		logger:      logger,
		clockRate:   DefaultClockRate,
		timerRate:   DefaultTimerRate,
		breakpoints: set.New[uint16](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes instructions and ticks the timers until ctx is cancelled or the
// machine halts. It returns nil on cancellation and the halting error
// otherwise.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.clock(ctx)
	})
	g.Go(func() error {
		return r.timers(ctx)
	})

	return g.Wait()
}

func (r *Runner) clock(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.clockRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if r.paused.Load() {
			continue
		}

		if _, err := r.stepLocked(); err != nil {
			return err
		}
	}
}

func (r *Runner) timers(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.timerRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if r.paused.Load() {
			r.flush()
			continue
		}
		r.TickTimers()
	}
}

// step executes one instruction and reports whether it stopped at a
// breakpoint. The caller must hold mu.
func (r *Runner) step() (bool, error) {
	pc := r.cpu.ProgramCounter()
	if r.trace {
		if op, err := r.cpu.OpcodeAt(pc); err == nil {
			r.logger.Debug("Executing instruction",
				log.Hex("address", pc),
				log.String("opcode", op.String()),
				log.String("instruction", disasm.Format(uint16(op), r.cpu.Quirks())))
		}
	}

	info, err := r.cpu.Step()
	if err != nil {
		var unknown *chip8.UnknownInstructionError
		if errors.As(err, &unknown) && !r.haltOnUnknown {
			r.logger.Warn("Skipping unknown instruction",
				log.Hex("address", unknown.Address),
				log.String("opcode", unknown.Opcode.String()))
			return false, nil
		}

		r.logger.Error("Machine halted", log.Hex("address", r.cpu.ProgramCounter()), log.Err(err))
		return false, fmt.Errorf("executing instruction at 0x%03X: %w", pc, err)
	}

	if info&chip8.Redraw != 0 {
		r.dirty = true
	}

	next := r.cpu.ProgramCounter()
	if !r.breakpoints.Contains(next) {
		return false, nil
	}
	r.paused.Store(true)
	r.logger.Info("Breakpoint reached", log.Hex("address", next))
	return true, nil
}

func (r *Runner) stepLocked() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.step()
}

// Step executes a single instruction, whether or not the runner is paused.
func (r *Runner) Step() error {
	_, err := r.stepLocked()
	return err
}

// StepN executes up to n instructions, whether or not the runner is paused.
// It stops early when a breakpoint is reached and returns the number of
// instructions executed.
func (r *Runner) StepN(n int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range n {
		hit, err := r.step()
		if err != nil {
			return i, err
		}
		if hit {
			return i + 1, nil
		}
	}
	return n, nil
}

// TickTimers counts both timers down once and delivers a frame when the
// display changed.
func (r *Runner) TickTimers() {
	r.mu.Lock()
	r.cpu.TickTimers()
	r.mu.Unlock()

	r.flush()
}

func (r *Runner) flush() {
	if r.onFrame == nil {
		return
	}

	r.mu.Lock()
	if !r.dirty {
		r.mu.Unlock()
		return
	}
	r.dirty = false
	display := r.cpu.Display()
	r.mu.Unlock()

	r.onFrame(display)
}

func (r *Runner) Pause() {
	r.paused.Store(true)
}

func (r *Runner) Resume() {
	r.paused.Store(false)
}

func (r *Runner) Paused() bool {
	return r.paused.Load()
}

// SetKey records a keypad key going down or up.
func (r *Runner) SetKey(key uint8, down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cpu.SetKey(key, down)
}

// ReadMemory copies memory starting at addr into buf and returns the number of
// bytes copied.
func (r *Runner) ReadMemory(addr uint16, buf []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cpu.Read(addr, buf)
}

// Snapshot returns a consistent copy of the machine state and display.
func (r *Runner) Snapshot() (chip8.State, chip8.Display) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cpu.Snapshot(), r.cpu.Display()
}
