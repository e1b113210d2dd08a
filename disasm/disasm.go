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

// Package disasm turns CHIP-8 program words into assembly text.
package disasm

import (
	"fmt"
	"io"
	"math/bits"

	isa "github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/senojj/emul8/chip8"
)

// Decode matches a word against the CHIP-8 opcode table. When several table
// entries match, the one with the most specific mask wins.
func Decode(word uint16) (isa.Opcode, bool) {
	var (
		found isa.Opcode
		best  = -1
	)
	for _, op := range isa.Opcodes[int(word>>12)] {
		if op.Instruction == nil || op.Info.Mask&word != op.Info.Value {
			continue
		}
		if specificity := bits.OnesCount16(op.Info.Mask); specificity > best {
			found, best = op, specificity
		}
	}
	return found, best >= 0
}

// Format returns the assembly text of a word as the processor would execute
// it with the given quirks. Words that do not decode to an instruction are
// formatted as data.
func Format(word uint16, quirks chip8.Quirks) string {
	if _, ok := chip8.Mnemonic(chip8.Opcode(word)); !ok {
		return fmt.Sprintf(".word $%04X", word)
	}

	op, ok := Decode(word)
	if !ok {
		return fmt.Sprintf(".word $%04X", word)
	}

	params := operands(word, quirks)
	if params == "" {
		return op.Instruction.Name
	}
	return op.Instruction.Name + " " + params
}

func operands(word uint16, quirks chip8.Quirks) string {
	x := (word >> 8) & 0xF
	y := (word >> 4) & 0xF
	nn := word & 0xFF
	nnn := word & 0xFFF

	switch word >> 12 {
	case 0x0:
		return ""
	case 0x1, 0x2:
		return fmt.Sprintf("$%03X", nnn)
	case 0x3, 0x4, 0x6, 0x7, 0xC:
		return fmt.Sprintf("V%X, $%02X", x, nn)
	case 0x5, 0x8, 0x9:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA:
		return fmt.Sprintf("I, $%03X", nnn)
	case 0xB:
		if quirks.JumpWithOffset {
			return fmt.Sprintf("V%X, $%03X", x, nnn)
		}
		return fmt.Sprintf("V0, $%03X", nnn)
	case 0xD:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, word&0xF)
	case 0xE:
		return fmt.Sprintf("V%X", x)
	}

	switch nn {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x1E:
		return fmt.Sprintf("I, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// Listing writes one line per program word, starting at origin. A trailing
// odd byte is written as data.
func Listing(w io.Writer, program []byte, origin uint16, quirks chip8.Quirks) error {
	for offset := 0; offset < len(program); offset += 2 {
		address := origin + uint16(offset)

		if offset+1 == len(program) {
			b := program[offset]
			if _, err := fmt.Fprintf(w, "0x%03X: %02X    .byte $%02X\n", address, b, b); err != nil {
				return fmt.Errorf("writing listing: %w", err)
			}
			break
		}

		word := uint16(program[offset])<<8 | uint16(program[offset+1])
		if _, err := fmt.Fprintf(w, "0x%03X: %04X  %s\n", address, word, Format(word, quirks)); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}
	return nil
}
