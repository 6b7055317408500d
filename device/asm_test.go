// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package device

import "testing"

func loadProgram(e *Emulator, addr uint16, code []byte) {
	for i, b := range code {
		e.memory[int(addr)+i] = b
	}
}

func TestStepAsmLoadAndStore(t *testing.T) {
	e := testEmulator()
	// LDA #$42 ; STA $10 ; RTS
	loadProgram(e, 0x0200, []byte{0xa9, 0x42, 0x85, 0x10, 0x60})
	state := AsmState{PC: 0x0200, SP: 0xfd}
	result, halt, err := e.StepAsm(50, state)
	if err != nil {
		t.Fatalf("StepAsm error: %v", err)
	}
	if halt != AsmHaltReturn {
		t.Fatalf("halt = %v, want AsmHaltReturn", halt)
	}
	if result.A != 0x42 {
		t.Fatalf("A = %#x, want 0x42", result.A)
	}
	if e.ReadByte(0x10) != 0x42 {
		t.Fatalf("mem[0x10] = %#x, want 0x42", e.ReadByte(0x10))
	}
}

func TestStepAsmArithmeticAndFlags(t *testing.T) {
	e := testEmulator()
	// LDA #$01 ; ADC #$01 ; RTS  => A = 2, carry clear
	loadProgram(e, 0x0300, []byte{0xa9, 0x01, 0x69, 0x01, 0x60})
	result, _, err := e.StepAsm(50, AsmState{PC: 0x0300, SP: 0xfd})
	if err != nil {
		t.Fatalf("StepAsm error: %v", err)
	}
	if result.A != 2 {
		t.Fatalf("A = %d, want 2", result.A)
	}
	if result.P&flagC != 0 {
		t.Fatal("expected carry clear")
	}
}

func TestStepAsmBranchLoop(t *testing.T) {
	e := testEmulator()
	// LDX #$03
	// loop: DEX ; BNE loop ; RTS
	loadProgram(e, 0x0400, []byte{0xa2, 0x03, 0xca, 0xd0, 0xfd, 0x60})
	result, halt, err := e.StepAsm(50, AsmState{PC: 0x0400, SP: 0xfd})
	if err != nil {
		t.Fatalf("StepAsm error: %v", err)
	}
	if halt != AsmHaltReturn {
		t.Fatalf("halt = %v, want AsmHaltReturn", halt)
	}
	if result.X != 0 {
		t.Fatalf("X = %d, want 0", result.X)
	}
}

func TestStepAsmBreakHaltsAtFFFF(t *testing.T) {
	e := testEmulator()
	loadProgram(e, 0x0500, []byte{0x00})
	result, halt, err := e.StepAsm(50, AsmState{PC: 0x0500, SP: 0xfd})
	if err != nil {
		t.Fatalf("StepAsm error: %v", err)
	}
	if halt != AsmHaltBreak {
		t.Fatalf("halt = %v, want AsmHaltBreak", halt)
	}
	if result.PC != 0xffff {
		t.Fatalf("PC = %#x, want 0xffff", result.PC)
	}
}

func TestStepAsmUnknownOpcodeErrors(t *testing.T) {
	e := testEmulator()
	// 0xff is not assigned in the opcode table.
	loadProgram(e, 0x0600, []byte{0xff})
	_, _, err := e.StepAsm(50, AsmState{PC: 0x0600, SP: 0xfd})
	if err == nil {
		t.Fatal("expected error for unknown opcode")
	}
}

func TestStepAsmStepBudgetResumable(t *testing.T) {
	e := testEmulator()
	// LDX #$05 ; loop: DEX ; BNE loop ; RTS
	loadProgram(e, 0x0700, []byte{0xa2, 0x05, 0xca, 0xd0, 0xfd, 0x60})
	state := AsmState{PC: 0x0700, SP: 0xfd}
	state, halt, err := e.StepAsm(2, state)
	if err != nil {
		t.Fatalf("StepAsm error: %v", err)
	}
	if halt != AsmHaltSteps {
		t.Fatalf("halt = %v, want AsmHaltSteps (budget exhausted mid-loop)", halt)
	}
	state, halt, err = e.StepAsm(50, state)
	if err != nil {
		t.Fatalf("StepAsm resume error: %v", err)
	}
	if halt != AsmHaltReturn || state.X != 0 {
		t.Fatalf("resumed state = %+v halt=%v, want X=0 AsmHaltReturn", state, halt)
	}
}
