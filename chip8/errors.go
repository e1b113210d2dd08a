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
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned when a program does not fit between
	// ProgramStartAddress and the end of memory.
	ErrProgramTooLarge = errors.New("program too large")

	// ErrProgramCounterOutOfBounds is returned when an instruction would be
	// fetched from beyond the end of memory.
	ErrProgramCounterOutOfBounds = errors.New("program counter out of bounds")

	// ErrStackUnderflow is returned by 00EE with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrStackOverflow is returned by 2NNN with a full stack.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrUnknownInstruction matches every *UnknownInstructionError.
	ErrUnknownInstruction = errors.New("unknown instruction")
)

// UnknownInstructionError reports a word that does not decode to any
// instruction. It is recoverable: the program counter has already moved past
// the word.
type UnknownInstructionError struct {
	Address uint16
	Opcode  Opcode
}

func (e *UnknownInstructionError) Error() string {
	return fmt.Sprintf("unknown instruction %s at 0x%03X", e.Opcode, e.Address)
}

func (e *UnknownInstructionError) Unwrap() error {
	return ErrUnknownInstruction
}
