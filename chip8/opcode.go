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

package chip8

import (
	"fmt"
)

// Opcode is a 16-bit big-endian instruction word.
type Opcode uint16

// kind is the first nibble, the instruction family.
func (op Opcode) kind() uint8 {
	return uint8(op >> 12)
}

// x is the second nibble, a register index.
func (op Opcode) x() uint8 {
	return uint8(op>>8) & 0x0F
}

// y is the third nibble, a register index.
func (op Opcode) y() uint8 {
	return uint8(op>>4) & 0x0F
}

// n is the fourth nibble.
func (op Opcode) n() uint8 {
	return uint8(op) & 0x0F
}

// nn is the low byte.
func (op Opcode) nn() uint8 {
	return uint8(op)
}

// nnn is the low 12 bits, an address.
func (op Opcode) nnn() uint16 {
	return uint16(op) & 0x0FFF
}

func (op Opcode) String() string {
	return fmt.Sprintf("%04X", uint16(op))
}

func (p *Processor) clearScreen(Opcode) error {
	p.display.Clear()
	return nil
}

func (p *Processor) returnFromSubroutine(Opcode) error {
	if p.sp == 0 {
		return ErrStackUnderflow
	}
	p.sp--
	p.pc = p.stack[p.sp]
	return nil
}

func (p *Processor) callSubroutine(op Opcode) error {
	if int(p.sp) >= len(p.stack) {
		return ErrStackOverflow
	}
	p.stack[p.sp] = p.pc
	p.sp++
	p.pc = op.nnn()
	return nil
}

func (p *Processor) jumpToLocation(op Opcode) error {
	p.pc = op.nnn()
	return nil
}

func (p *Processor) jumpWithOffset(op Opcode) error {
	offset := p.v[0x0]
	if p.quirks.JumpWithOffset {
		offset = p.v[op.x()]
	}
	p.pc = op.nnn() + uint16(offset)
	return nil
}

func (p *Processor) stepIfXEqualsNN(op Opcode) error {
	if p.v[op.x()] == op.nn() {
		p.pc += 2
	}
	return nil
}

func (p *Processor) stepIfXNotEqualsNN(op Opcode) error {
	if p.v[op.x()] != op.nn() {
		p.pc += 2
	}
	return nil
}

func (p *Processor) stepIfXEqualsY(op Opcode) error {
	if p.v[op.x()] == p.v[op.y()] {
		p.pc += 2
	}
	return nil
}

func (p *Processor) stepIfXNotEqualsY(op Opcode) error {
	if p.v[op.x()] != p.v[op.y()] {
		p.pc += 2
	}
	return nil
}

func (p *Processor) setXToNN(op Opcode) error {
	p.v[op.x()] = op.nn()
	return nil
}

func (p *Processor) addNNToX(op Opcode) error {
	p.v[op.x()] += op.nn()
	return nil
}

func (p *Processor) setXToY(op Opcode) error {
	p.v[op.x()] = p.v[op.y()]
	return nil
}

func (p *Processor) orXY(op Opcode) error {
	p.v[op.x()] |= p.v[op.y()]
	return nil
}

func (p *Processor) andXY(op Opcode) error {
	p.v[op.x()] &= p.v[op.y()]
	return nil
}

func (p *Processor) xorXY(op Opcode) error {
	p.v[op.x()] ^= p.v[op.y()]
	return nil
}

// The flag of the 8XY4..8XYE group is always computed from the operands
// before anything is written, then VF is written before the result.

func (p *Processor) addXY(op Opcode) error {
	sum := uint16(p.v[op.x()]) + uint16(p.v[op.y()])
	if !p.quirks.AddWithoutCarry {
		p.v[CarryFlag] = byte(sum >> 8)
	}
	p.v[op.x()] = byte(sum)
	return nil
}

func (p *Processor) subtractYFromX(op Opcode) error {
	vx, vy := p.v[op.x()], p.v[op.y()]
	p.v[CarryFlag] = flag(vx > vy)
	p.v[op.x()] = vx - vy
	return nil
}

func (p *Processor) subtractXFromY(op Opcode) error {
	vx, vy := p.v[op.x()], p.v[op.y()]
	p.v[CarryFlag] = flag(vy > vx)
	p.v[op.x()] = vy - vx
	return nil
}

func (p *Processor) shiftRightX(op Opcode) error {
	if !p.quirks.Shift {
		p.v[op.x()] = p.v[op.y()]
	}
	value := p.v[op.x()]
	p.v[CarryFlag] = value & 0x1
	p.v[op.x()] = value >> 1
	return nil
}

func (p *Processor) shiftLeftX(op Opcode) error {
	if !p.quirks.Shift {
		p.v[op.x()] = p.v[op.y()]
	}
	value := p.v[op.x()]
	p.v[CarryFlag] = (value & 0x80) >> 7
	p.v[op.x()] = value << 1
	return nil
}

func (p *Processor) setIToNNN(op Opcode) error {
	p.i = op.nnn()
	return nil
}

func (p *Processor) setXToRandom(op Opcode) error {
	randomByte := byte(p.rng.Uint32N(256))
	p.v[op.x()] = randomByte & op.nn()
	return nil
}

func (p *Processor) drawSprite(op Opcode) error {
	p.blit(p.v[op.x()], p.v[op.y()], op.n())
	return nil
}

func (p *Processor) stepIfKeyDown(op Opcode) error {
	if p.Key(p.v[op.x()]) {
		p.pc += 2
	}
	return nil
}

func (p *Processor) stepIfKeyUp(op Opcode) error {
	if !p.Key(p.v[op.x()]) {
		p.pc += 2
	}
	return nil
}

func (p *Processor) setXToDelay(op Opcode) error {
	p.v[op.x()] = p.delay
	return nil
}

func (p *Processor) pauseUntilKeyPressed(op Opcode) error {
	for key := range uint8(KeyCount) {
		if p.Key(key) {
			p.v[op.x()] = key
			return nil
		}
	}

	p.pc -= 2 // Move the program counter back, replaying the last opcode
	return nil
}

func (p *Processor) setDelayToX(op Opcode) error {
	p.delay = p.v[op.x()]
	return nil
}

func (p *Processor) setSoundToX(op Opcode) error {
	p.sound = p.v[op.x()]
	return nil
}

func (p *Processor) addXToI(op Opcode) error {
	p.i += uint16(p.v[op.x()])
	return nil
}

func (p *Processor) setIToSymbol(op Opcode) error {
	p.i = FontStartAddress + uint16(p.v[op.x()])*GlyphSize
	return nil
}

// binaryCodedDecimal stores the hundreds, tens and ones digits of VX at I,
// I+1 and I+2.
//
// It uses the double dabble algorithm: the value is shifted into a BCD
// register one bit at a time, and before every shift each digit that is 5 or
// more gets 3 added so the shift carries it into the next digit.
func (p *Processor) binaryCodedDecimal(op Opcode) error {
	var bcd uint32

	val := uint32(p.v[op.x()])

	for i := range 8 {
		// Ones (bits 0-3)
		if (bcd & 0x00F) >= 5 {
			bcd += 3
		}

		// Tens (bits 4-7)
		if (bcd & 0x0F0) >= 0x050 {
			bcd += 0x030
		}

		// Hundreds (bits 8-11)
		if (bcd & 0xF00) >= 0x500 {
			bcd += 0x300
		}

		// Shift BCD left by 1, and pull in the next bit from `val`
		bcd = (bcd << 1) | ((val >> (7 - i)) & 1)
	}

	p.memory[p.i&AddressMask] = byte((bcd >> 8) & 0xF)     // Hundreds
	p.memory[(p.i+1)&AddressMask] = byte((bcd >> 4) & 0xF) // Tens
	p.memory[(p.i+2)&AddressMask] = byte(bcd & 0xF)        // Ones
	return nil
}

func (p *Processor) setRegistersToMemory(op Opcode) error {
	x := uint16(op.x())
	for r := uint16(0); r <= x; r++ {
		p.memory[(p.i+r)&AddressMask] = p.v[r]
	}
	if !p.quirks.LoadStore {
		p.i += x + 1
	}
	return nil
}

func (p *Processor) setMemoryToRegisters(op Opcode) error {
	x := uint16(op.x())
	for r := uint16(0); r <= x; r++ {
		p.v[r] = p.memory[(p.i+r)&AddressMask]
	}
	if !p.quirks.LoadStore {
		p.i += x + 1
	}
	return nil
}

func flag(set bool) byte {
	if set {
		return 1
	}
	return 0
}
