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

// instruction is one entry of the dispatch table.
type instruction struct {
	name    string
	redraw  bool
	execute func(*Processor, Opcode) error
}

// family holds the instructions sharing a first nibble. The selector masks
// the bits of the word that tell them apart; families with a single
// instruction have a zero selector and store it under key 0.
type family struct {
	selector     uint16
	instructions map[uint16]instruction
}

var dispatch = [16]family{
	0x0: {
		selector: 0x0FFF,
		instructions: map[uint16]instruction{
			0x0E0: {name: "cls", redraw: true, execute: (*Processor).clearScreen},
			0x0EE: {name: "ret", execute: (*Processor).returnFromSubroutine},
		},
	},
	0x1: single("jp", (*Processor).jumpToLocation),
	0x2: single("call", (*Processor).callSubroutine),
	0x3: single("se", (*Processor).stepIfXEqualsNN),
	0x4: single("sne", (*Processor).stepIfXNotEqualsNN),
	0x5: {
		selector: 0x000F,
		instructions: map[uint16]instruction{
			0x0: {name: "se", execute: (*Processor).stepIfXEqualsY},
		},
	},
	0x6: single("ld", (*Processor).setXToNN),
	0x7: single("add", (*Processor).addNNToX),
	0x8: {
		selector: 0x000F,
		instructions: map[uint16]instruction{
			0x0: {name: "ld", execute: (*Processor).setXToY},
			0x1: {name: "or", execute: (*Processor).orXY},
			0x2: {name: "and", execute: (*Processor).andXY},
			0x3: {name: "xor", execute: (*Processor).xorXY},
			0x4: {name: "add", execute: (*Processor).addXY},
			0x5: {name: "sub", execute: (*Processor).subtractYFromX},
			0x6: {name: "shr", execute: (*Processor).shiftRightX},
			0x7: {name: "subn", execute: (*Processor).subtractXFromY},
			0xE: {name: "shl", execute: (*Processor).shiftLeftX},
		},
	},
	0x9: {
		selector: 0x000F,
		instructions: map[uint16]instruction{
			0x0: {name: "sne", execute: (*Processor).stepIfXNotEqualsY},
		},
	},
	0xA: single("ld", (*Processor).setIToNNN),
	0xB: single("jp", (*Processor).jumpWithOffset),
	0xC: single("rnd", (*Processor).setXToRandom),
	0xD: {
		instructions: map[uint16]instruction{
			0x0: {name: "drw", redraw: true, execute: (*Processor).drawSprite},
		},
	},
	0xE: {
		selector: 0x00FF,
		instructions: map[uint16]instruction{
			0x9E: {name: "skp", execute: (*Processor).stepIfKeyDown},
			0xA1: {name: "sknp", execute: (*Processor).stepIfKeyUp},
		},
	},
	0xF: {
		selector: 0x00FF,
		instructions: map[uint16]instruction{
			0x07: {name: "ld", execute: (*Processor).setXToDelay},
			0x0A: {name: "ld", execute: (*Processor).pauseUntilKeyPressed},
			0x15: {name: "ld", execute: (*Processor).setDelayToX},
			0x18: {name: "ld", execute: (*Processor).setSoundToX},
			0x1E: {name: "add", execute: (*Processor).addXToI},
			0x29: {name: "ld", execute: (*Processor).setIToSymbol},
			0x33: {name: "ld", execute: (*Processor).binaryCodedDecimal},
			0x55: {name: "ld", execute: (*Processor).setRegistersToMemory},
			0x65: {name: "ld", execute: (*Processor).setMemoryToRegisters},
		},
	},
}

func single(name string, execute func(*Processor, Opcode) error) family {
	return family{
		instructions: map[uint16]instruction{
			0: {name: name, execute: execute},
		},
	}
}

// decode looks up the instruction for a word. A miss is an unknown
// instruction.
func decode(op Opcode) (instruction, bool) {
	f := dispatch[op.kind()]
	ins, ok := f.instructions[uint16(op)&f.selector]
	return ins, ok
}

// Mnemonic returns the lower-case mnemonic of the instruction a word decodes
// to.
func Mnemonic(op Opcode) (string, bool) {
	ins, ok := decode(op)
	return ins.name, ok
}
