// This file is part of anotherworld.
//
// anotherworld is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// anotherworld is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with anotherworld.  If not, see <https://www.gnu.org/licenses/>.

package vm

import "testing"

func newTestVM(bytecode []byte) *VM {
	v := New(nil)
	v.Bytecode = bytecode
	return v
}

func TestSETIAndYield(t *testing.T) {
	v := newTestVM([]byte{
		0x00, 0x05, 0x01, 0x02, // SETI reg=5, imm=0x0102
		0x06, // [4] YIELD
	})
	v.Frame()

	if got := v.Reg(5); got != 0x0102 {
		t.Fatalf("got reg5=%#x, want 0x0102", got)
	}
	if v.ThreadPC(0) != 5 {
		t.Fatalf("got pc=%d, want 5 (opcode byte of YIELD consumed too)", v.ThreadPC(0))
	}
}

func TestADDRWraps(t *testing.T) {
	v := newTestVM([]byte{
		0x00, 0x00, 0xFF, 0xFF, // SETI r0 = 0xFFFF
		0x00, 0x01, 0x00, 0x02, // SETI r1 = 2
		0x02, 0x00, 0x01, // ADDR r0 += r1 -> wraps to 1
		0x06,
	})
	v.Frame()
	if got := v.Reg(0); got != 1 {
		t.Fatalf("got reg0=%#x, want 1 (wrapped)", got)
	}
}

func TestCallAndRet(t *testing.T) {
	v := newTestVM([]byte{
		0x04, 0x00, 0x08, // [0] CALL 8
		0x00, 0x01, 0x00, 0x2A, // [3] (after return) SETI r1 = 42
		0x06,                   // [7] YIELD
		0x00, 0x02, 0x00, 0x01, // [8] SETI r2 = 1
		0x05, // [12] RET
	})
	v.Frame()
	if got := v.Reg(2); got != 1 {
		t.Fatalf("got reg2=%#x, want 1 (subroutine ran)", got)
	}
	if got := v.Reg(1); got != 42 {
		t.Fatalf("got reg1=%#x, want 42 (resumed after CALL)", got)
	}
}

func TestRetWithEmptyStackFaults(t *testing.T) {
	v := newTestVM([]byte{0x05}) // bare RET, no CALL
	v.Frame()
	halted, err := v.Halted()
	if !halted || err == nil {
		t.Fatalf("expected RET with empty call stack to fault")
	}
}

func TestJumpTargetOutOfRangeFaults(t *testing.T) {
	v := newTestVM([]byte{0x07, 0xFF, 0xFF}) // JUMP 0xFFFF
	v.Frame()
	halted, _ := v.Halted()
	if !halted {
		t.Fatalf("expected out-of-range jump target to fault")
	}
}

func TestInvalidPolygonRangeIsNoOp(t *testing.T) {
	v := newTestVM([]byte{0x20, 0x06}) // 0x20: invalid-polygon no-op, then YIELD
	v.Frame()
	if halted, err := v.Halted(); halted {
		t.Fatalf("expected an opcode in the invalid-polygon range (0x20) to be a harmless no-op, got fault: %v", err)
	}
	if v.ThreadPC(0) != 2 {
		t.Fatalf("got pc=%d, want 2 (consumed only the opcode byte, then ran YIELD)", v.ThreadPC(0))
	}
}

func TestEmptyBytecodeFaults(t *testing.T) {
	v := newTestVM([]byte{})
	v.Frame()
	halted, _ := v.Halted()
	if !halted {
		t.Fatalf("expected empty bytecode to fault (pc out of range)")
	}
}

func TestTruncatedOperandFaultsRatherThanPanics(t *testing.T) {
	v := newTestVM([]byte{0x00, 0x05}) // SETI reg=5, but imm is missing
	v.Frame()
	halted, err := v.Halted()
	if !halted || err == nil {
		t.Fatalf("expected truncated operand fetch to fault, not panic")
	}
}

func TestDBRALoopsThenFallsThrough(t *testing.T) {
	v := newTestVM([]byte{
		0x00, 0x00, 0x00, 0x03, // [0] SETI r0 = 3
		0x09, 0x00, 0x00, 0x04, // [4] DBRA r0, -> 4 (loop while --r0 != 0)
		0x06, // [8] YIELD
	})
	v.Frame()
	if got := v.Reg(0); got != 0 {
		t.Fatalf("got reg0=%#x, want 0 after loop", got)
	}
	if v.ThreadPC(0) != 9 {
		t.Fatalf("got pc=%d, want 9 (fell through to YIELD)", v.ThreadPC(0))
	}
}

func TestCJMPImmediateEqualTaken(t *testing.T) {
	v := newTestVM([]byte{
		0x00, 0x00, 0x00, 0x05, // [0] SETI r0 = 5
		0x0A, 0x00, 0x00, 0x05, 0x00, 0x0E, // [4] CJMP variant=0(eq,i8 rhs) reg1=0 rhs=5 addr=14
		0x00, 0x01, 0x00, 0x01, // [10] (skipped) SETI r1=1
		0x06, // [14] YIELD
	})
	v.Frame()
	if got := v.Reg(1); got != 0 {
		t.Fatalf("expected branch taken to skip SETI r1, got reg1=%#x", got)
	}
}

func TestStartDefersToNextFrame(t *testing.T) {
	v := newTestVM([]byte{
		0x08, 0x01, 0x00, 0x09, // START tid=1 addr=9
		0x06,                   // [4] YIELD (thread 0)
		0x00, 0x00, 0x00, 0x00, // padding
		0x00, 0x02, 0x00, 0x07, // [9] SETI r2 = 7 (thread 1's entry)
		0x06, // YIELD
	})
	v.Frame()
	if v.ThreadState(1) != Paused {
		t.Fatalf("expected thread 1 still Paused in the frame START was issued")
	}
	if got := v.Reg(2); got != 0 {
		t.Fatalf("expected thread 1 not to have run yet, got reg2=%#x", got)
	}

	v.Frame()
	if v.ThreadState(1) != Running {
		t.Fatalf("expected thread 1 Running after commit phase")
	}
	if got := v.Reg(2); got != 7 {
		t.Fatalf("got reg2=%#x, want 7 after thread 1 ran", got)
	}
}

func TestResetModeTwoForcesUnreachablePC(t *testing.T) {
	v := newTestVM([]byte{
		0x0C, 0x00, 0x00, 0x02, // RESET first=0 last=0 mode=2 (kill self)
		0x00, 0x01, 0x00, 0x01, // (never reached by thread 0 next frame)
		0x06,
	})
	v.Frame()
	v.Frame() // commit applies the RESET queued last frame
	if v.ThreadPC(0) != 0xFFFF {
		t.Fatalf("got pc=%#x, want 0xFFFF after mode-2 RESET", v.ThreadPC(0))
	}
	if v.ThreadState(0) != Paused {
		t.Fatalf("expected thread 0 Paused after mode-2 RESET")
	}
}
