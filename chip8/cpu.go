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

// Package chip8 implements the CHIP-8 virtual machine: 4KB of memory, sixteen
// 8-bit registers, an index register, a call stack, the delay and sound timers
// and a packed 64x32 monochrome display.
//
// A Processor executes one instruction per call to Step. It never ticks its own
// timers and holds no locks; the caller drives both clocks and serializes
// access.
package chip8

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/retroenv/retrogolib/log"
)

const (
	MemorySize          int    = 4096
	RegisterCount       int    = 16
	KeyCount            int    = 16
	StackSize           int    = 16
	FontStartAddress    uint16 = 0x10
	GlyphSize           uint16 = 5
	ProgramStartAddress uint16 = 0x200
	AddressMask         uint16 = 0xFFF
	CarryFlag           uint8  = 0xF
)

// Info reports machine conditions after a step.
type Info uint8

const (
	Delay Info = 1 << iota
	Sound
	Redraw
)

var fontSet = [...]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Processor is a CHIP-8 machine. Create it with New.
type Processor struct {
	memory   [MemorySize]byte
	v        [RegisterCount]byte
	keyState [KeyCount]atomic.Bool
	display  Display
	stack    [StackSize]uint16
	sp       uint8
	pc       uint16
	i        uint16
	delay    uint8
	sound    uint8

	quirks Quirks
	rng    *rand.Rand
	logger *log.Logger
}

// State is a copy of the register file, stack and timers.
type State struct {
	V     [RegisterCount]byte
	PC    uint16
	I     uint16
	SP    uint8
	Stack []uint16
	Delay uint8
	Sound uint8
}

// Option configures a Processor.
type Option func(*Processor)

// WithQuirks selects the quirk behaviors the processor executes with.
func WithQuirks(q Quirks) Option {
	return func(p *Processor) {
		p.quirks = q
	}
}

// WithRandom sets the source used by CXNN.
func WithRandom(src rand.Source) Option {
	return func(p *Processor) {
		p.rng = rand.New(src)
	}
}

// WithSeed makes CXNN deterministic.
func WithSeed(seed uint64) Option {
	return WithRandom(rand.NewPCG(seed, seed))
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// New returns a zeroed machine with the program counter at ProgramStartAddress.
// The font and program are not loaded; see LoadFont, LoadProgram and Boot.
func New(opts ...Option) *Processor {
	p := &Processor{pc: ProgramStartAddress}
	for _, opt := range opts {
		opt(p)
	}

	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if p.logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		p.logger = log.NewWithConfig(cfg)
	}
	return p
}

// Reset zeroes memory, registers, stack, timers, keypad and display. Quirks,
// the random source and the logger are kept.
func (p *Processor) Reset() {
	p.memory = [MemorySize]byte{}
	p.v = [RegisterCount]byte{}
	for k := range p.keyState {
		p.keyState[k].Store(false)
	}
	p.display.Clear()
	p.stack = [StackSize]uint16{}
	p.sp = 0
	p.pc = ProgramStartAddress
	p.i = 0
	p.delay = 0
	p.sound = 0
}

// Boot resets the machine, loads the font and loads the program.
func (p *Processor) Boot(program []byte) error {
	p.Reset()
	p.LoadFont()
	return p.LoadProgram(program)
}

// LoadFont copies the hexadecimal digit glyphs to FontStartAddress.
func (p *Processor) LoadFont() {
	p.Write(FontStartAddress, fontSet[:])
}

// LoadProgram copies b to ProgramStartAddress and points the program counter
// at it. Memory is left untouched when the program does not fit.
func (p *Processor) LoadProgram(b []byte) error {
	available := MemorySize - int(ProgramStartAddress)
	if len(b) > available {
		return fmt.Errorf("%w: %d bytes, %d available", ErrProgramTooLarge, len(b), available)
	}

	p.Write(ProgramStartAddress, b)
	p.pc = ProgramStartAddress
	return nil
}

// Write copies data into memory starting at loc and returns the number of
// bytes written. Copying stops at the end of memory.
func (p *Processor) Write(loc uint16, data []byte) int {
	if int(loc) >= MemorySize {
		return 0
	}
	return copy(p.memory[loc:], data)
}

// Read copies memory starting at loc into data and returns the number of
// bytes read. Copying stops at the end of memory.
func (p *Processor) Read(loc uint16, data []byte) int {
	if int(loc) >= MemorySize {
		return 0
	}
	return copy(data, p.memory[loc:])
}

// OpcodeAt returns the instruction word stored at offset.
func (p *Processor) OpcodeAt(offset uint16) (Opcode, error) {
	if int(offset)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: 0x%04X", ErrProgramCounterOutOfBounds, offset)
	}

	// opcode is a 16bit value, comprised of two contiguous 8bit values
	// in memory, starting at the program counter
	high := uint16(p.memory[offset])  // high-order bits of opcode
	low := uint16(p.memory[offset+1]) // low-order bits of opcode
	return Opcode((high << 8) | low), nil
}

// Step fetches, decodes and executes one instruction.
//
// An *UnknownInstructionError leaves the program counter past the word, so the
// caller may keep stepping. A stack fault leaves it on the faulting
// instruction.
func (p *Processor) Step() (Info, error) {
	var info Info

	address := p.pc
	opcode, err := p.OpcodeAt(address)
	if err != nil {
		return p.status(info), err
	}

	p.pc += 2

	ins, ok := decode(opcode)
	if !ok {
		p.logger.Debug("Unknown instruction",
			log.Hex("address", address),
			log.Hex("opcode", uint16(opcode)))
		return p.status(info), &UnknownInstructionError{Address: address, Opcode: opcode}
	}

	if err := ins.execute(p, opcode); err != nil {
		p.pc = address
		p.logger.Debug("Instruction fault",
			log.String("instruction", ins.name),
			log.Hex("address", address),
			log.Err(err))
		return p.status(info), fmt.Errorf("%s at 0x%03X: %w", ins.name, address, err)
	}

	if ins.redraw {
		info |= Redraw
	}
	return p.status(info), nil
}

func (p *Processor) status(info Info) Info {
	if p.sound > 0 {
		info |= Sound
	}

	if p.delay > 0 {
		info |= Delay
	}
	return info
}

// TickTimers decrements the delay and sound timers. The caller invokes it at
// 60Hz, independent of the instruction rate.
func (p *Processor) TickTimers() {
	if p.sound > 0 {
		p.sound--
	}

	if p.delay > 0 {
		p.delay--
	}
}

func (p *Processor) SetKey(key uint8, value bool) {
	p.keyState[key&0x0F].Store(value)
}

func (p *Processor) Key(key uint8) bool {
	return p.keyState[key&0x0F].Load()
}

func (p *Processor) Quirks() Quirks {
	return p.quirks
}

// SetQuirks changes the quirk behaviors. It must not be called during Step.
func (p *Processor) SetQuirks(q Quirks) {
	p.quirks = q
}

// Display returns a copy of the packed framebuffer.
func (p *Processor) Display() Display {
	return p.display
}

func (p *Processor) Register(v uint8) uint8 {
	key := v & 0xF
	return p.v[key]
}

func (p *Processor) Registers() [RegisterCount]byte {
	return p.v
}

func (p *Processor) StackDepth() int {
	return int(p.sp)
}

// Stack returns the return addresses, oldest first.
func (p *Processor) Stack() []uint16 {
	stack := make([]uint16, p.sp)
	copy(stack, p.stack[:p.sp])
	return stack
}

func (p *Processor) Index() uint16 {
	return p.i
}

func (p *Processor) ProgramCounter() uint16 {
	return p.pc
}

func (p *Processor) Delay() uint8 {
	return p.delay
}

func (p *Processor) SetDelay(value uint8) {
	p.delay = value
}

func (p *Processor) Sound() uint8 {
	return p.sound
}

func (p *Processor) SetSound(value uint8) {
	p.sound = value
}

// Snapshot returns the register file, stack and timers.
func (p *Processor) Snapshot() State {
	return State{
		V:     p.v,
		PC:    p.pc,
		I:     p.i,
		SP:    p.sp,
		Stack: p.Stack(),
		Delay: p.delay,
		Sound: p.sound,
	}
}
