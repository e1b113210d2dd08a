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

package disasm

import (
	"bytes"
	"errors"
	"testing"

	isa "github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/senojj/emul8/chip8"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		word uint16
		want *isa.Instruction
	}{
		{0x00E0, isa.ClsInst},
		{0x00EE, isa.RetInst},
		{0x1234, isa.JpInst},
		{0x2345, isa.CallInst},
		{0x6A12, isa.LdInst},
		{0x8AB4, isa.AddInst},
		{0x8AB5, isa.SubInst},
		{0xCA12, isa.RndInst},
		{0xD125, isa.DrwInst},
		{0xE19E, isa.SkpInst},
	}

	for _, tt := range tests {
		op, ok := Decode(tt.word)
		assert.True(t, ok, "word %04X", tt.word)
		assert.Equal(t, tt.want, op.Instruction, "word %04X", tt.word)
	}
}

func TestDecode_Unknown(t *testing.T) {
	for _, word := range []uint16{0xE000, 0xF0FF} {
		_, ok := Decode(word)
		assert.False(t, ok, "word %04X", word)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		word uint16
		want string
	}{
		{0x00E0, "cls"},
		{0x00EE, "ret"},
		{0x1234, "jp $234"},
		{0x2ABC, "call $ABC"},
		{0x3234, "se V2, $34"},
		{0x4234, "sne V2, $34"},
		{0x5120, "se V1, V2"},
		{0x6A0F, "ld VA, $0F"},
		{0x7101, "add V1, $01"},
		{0x8120, "ld V1, V2"},
		{0x8121, "or V1, V2"},
		{0x8124, "add V1, V2"},
		{0x8127, "subn V1, V2"},
		{0x812E, "shl V1, V2"},
		{0x9120, "sne V1, V2"},
		{0xA234, "ld I, $234"},
		{0xB234, "jp V0, $234"},
		{0xC3FF, "rnd V3, $FF"},
		{0xD125, "drw V1, V2, $5"},
		{0xE49E, "skp V4"},
		{0xE4A1, "sknp V4"},
		{0xF307, "ld V3, DT"},
		{0xF30A, "ld V3, K"},
		{0xF315, "ld DT, V3"},
		{0xF318, "ld ST, V3"},
		{0xF31E, "add I, V3"},
		{0xF329, "ld F, V3"},
		{0xF333, "ld B, V3"},
		{0xF555, "ld [I], V5"},
		{0xF565, "ld V5, [I]"},
		{0x0000, ".word $0000"},
		{0x0123, ".word $0123"},
		{0x5121, ".word $5121"},
		{0xF0FF, ".word $F0FF"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.word, chip8.Quirks{}))
	}
}

func TestFormat_JumpQuirk(t *testing.T) {
	assert.Equal(t, "jp V0, $345", Format(0xB345, chip8.Quirks{}))
	assert.Equal(t, "jp V3, $345", Format(0xB345, chip8.Quirks{JumpWithOffset: true}))
}

// Format names instructions through the opcode table, which has to agree
// with the processor on every word the processor executes.
func TestFormat_AgreesWithProcessor(t *testing.T) {
	for word := range 0x10000 {
		name, ok := chip8.Mnemonic(chip8.Opcode(word))
		if !ok {
			continue
		}

		op, found := Decode(uint16(word))
		assert.True(t, found, "word %04X", word)
		assert.Equal(t, name, op.Instruction.Name, "word %04X", word)
	}
}

func TestListing(t *testing.T) {
	var buf bytes.Buffer
	program := []byte{0x60, 0x0A, 0xA2, 0x06, 0xFF, 0xFF, 0x12}

	assert.NoError(t, Listing(&buf, program, 0x200, chip8.Quirks{}))

	want := "0x200: 600A  ld V0, $0A\n" +
		"0x202: A206  ld I, $206\n" +
		"0x204: FFFF  .word $FFFF\n" +
		"0x206: 12    .byte $12\n"
	assert.Equal(t, want, buf.String())
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestListing_WriteError(t *testing.T) {
	err := Listing(failingWriter{}, []byte{0x00, 0xE0}, 0x200, chip8.Quirks{})
	assert.True(t, errors.Is(err, errWrite))
}
