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

// Package monitor renders machine state as text for debugging.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/senojj/emul8/chip8"
)

const bytesPerRow = 16

// Registers lays out the general purpose registers in two columns followed by
// the index, program counter, stack pointer and timers.
func Registers(s chip8.State) string {
	var b strings.Builder

	half := chip8.RegisterCount / 2
	for r := range half {
		fmt.Fprintf(&b, "V%X: %02X    V%X: %02X\n", r, s.V[r], r+half, s.V[r+half])
	}
	fmt.Fprintf(&b, "I:  %03X   PC: %03X\n", s.I, s.PC)
	fmt.Fprintf(&b, "SP: %02X    DT: %02X    ST: %02X\n", s.SP, s.Delay, s.Sound)
	return b.String()
}

// WriteMemory dumps mem as rows of 16 bytes grouped into big endian words.
// Each row is prefixed with its address, counted from origin.
func WriteMemory(w io.Writer, mem []byte, origin uint16) error {
	bw := bufio.NewWriter(w)

	for offset := 0; offset < len(mem); offset += bytesPerRow {
		end := min(offset+bytesPerRow, len(mem))
		fmt.Fprintf(bw, "0x%03X:", int(origin)+offset)

		for i := offset; i < end; i += 2 {
			if i+1 < end {
				fmt.Fprintf(bw, " %02x%02x", mem[i], mem[i+1])
			} else {
				fmt.Fprintf(bw, " %02x", mem[i])
			}
		}
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing memory dump: %w", err)
	}
	return nil
}

// WriteDisplay draws the framebuffer as Height lines of Width runes.
func WriteDisplay(w io.Writer, d chip8.Display, on, off rune) error {
	bw := bufio.NewWriter(w)

	for y := range chip8.Height {
		for x := range chip8.Width {
			if d.Pixel(x, y) {
				bw.WriteRune(on)
			} else {
				bw.WriteRune(off)
			}
		}
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing display: %w", err)
	}
	return nil
}
