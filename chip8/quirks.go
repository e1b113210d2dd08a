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
	"strings"
)

// Quirks selects between historically divergent interpretations of a few
// instructions. The zero value is the original COSMAC VIP behavior with a
// carry flag on 8XY4.
type Quirks struct {
	// Shift shifts VX in place for 8XY6 and 8XYE. Without it VY is copied
	// into VX before shifting.
	Shift bool

	// LoadStore leaves I unchanged after FX55 and FX65. Without it I is
	// advanced by X+1.
	LoadStore bool

	// JumpWithOffset reads BNNN as BXNN and jumps to NNN + VX instead of
	// NNN + V0.
	JumpWithOffset bool

	// AddWithoutCarry leaves VF untouched on 8XY4.
	AddWithoutCarry bool
}

func (q Quirks) String() string {
	var names []string
	if q.Shift {
		names = append(names, "shift")
	}
	if q.LoadStore {
		names = append(names, "loadstore")
	}
	if q.JumpWithOffset {
		names = append(names, "jump")
	}
	if q.AddWithoutCarry {
		names = append(names, "nocarry")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
