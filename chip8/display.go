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
	"math/bits"
)

const (
	Width       int = 64
	Height      int = 32
	Area        int = Width * Height
	DisplaySize int = Area / 8
)

// Display is the packed 64x32 framebuffer, row-major, eight pixels per byte.
// Pixel (x, y) is bit i%8 of byte i/8 where i = y*Width + x, so the least
// significant bit of a byte is its leftmost pixel.
type Display [DisplaySize]byte

func pixelIndex(x, y int) (int, byte) {
	i := y*Width + x
	return i / 8, 1 << (i % 8)
}

func (d *Display) Clear() {
	*d = Display{}
}

// Pixel reports whether the pixel at (x, y) is lit. Coordinates outside the
// display are never lit.
func (d Display) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	index, mask := pixelIndex(x, y)
	return d[index]&mask != 0
}

// Set turns the pixel at (x, y) on or off. Coordinates outside the display
// are ignored.
func (d *Display) Set(x, y int, on bool) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	index, mask := pixelIndex(x, y)
	if on {
		d[index] |= mask
	} else {
		d[index] &^= mask
	}
}

// toggle flips the pixel at (x, y), which must be on screen, and reports
// whether it was lit before.
func (d *Display) toggle(x, y int) bool {
	index, mask := pixelIndex(x, y)
	collided := d[index]&mask != 0
	d[index] ^= mask
	return collided
}

// Lit returns the number of pixels that are on.
func (d Display) Lit() int {
	var count int
	for _, b := range d {
		count += bits.OnesCount8(b)
	}
	return count
}

// blit draws an n-row sprite read from memory at I, anchored at (x, y).
// The anchor wraps around the display; the sprite itself is clipped at the
// right and bottom edges. VF is set when any lit pixel is turned off.
func (p *Processor) blit(x, y, n uint8) {
	startX := int(x) % Width
	startY := int(y) % Height

	p.v[CarryFlag] = 0 // Reset the collision register.

	for row := range int(n) {
		if startY+row >= Height {
			// Reached the bottom of the display.
			break
		}

		sprite := p.memory[(p.i+uint16(row))&AddressMask]

		for col := range 8 {
			if startX+col >= Width {
				break
			}

			if sprite&(0x80>>col) == 0 {
				continue
			}

			if p.display.toggle(startX+col, startY+row) {
				// Pixel was already on. This indicates a graphical object collision.
				p.v[CarryFlag] = 1
			}
		}
	}
}
