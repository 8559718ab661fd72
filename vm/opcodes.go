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

import (
	"github.com/anotherworld-vm/engine/errs"
	"github.com/anotherworld-vm/engine/logger"
	"github.com/anotherworld-vm/engine/resource"
)

// step executes opcodes on thread tid until it yields or the VM halts
// (spec §4.5.3's run phase for a single thread). It returns once
// vm.yielded is set.
func (vm *VM) step(tid int) {
	t := &vm.threads[tid]
	vm.yielded = false

	for !vm.yielded && !vm.halted {
		if int(t.pc) >= len(vm.Bytecode) {
			vm.fault(errs.Errorf(errs.InvalidInstruction, t.pc, 0))
			return
		}

		op := vm.Bytecode[t.pc]
		opPC := t.pc
		t.pc++

		vm.dispatch(tid, op, opPC)
	}
}

// dispatch runs a single opcode's handler, recovering from an operand
// fetch that runs past the end of the bytecode (a truncated/corrupt
// instruction stream) and turning it into the same fatal
// InvalidInstruction fault the explicit bounds checks raise elsewhere,
// rather than letting a malformed asset crash the process.
func (vm *VM) dispatch(tid int, op byte, opPC uint16) {
	defer func() {
		if r := recover(); r != nil {
			vm.fault(errs.Errorf(errs.InvalidInstruction, opPC, op))
		}
	}()

	switch {
	case op <= 0x1A:
		vm.execCore(tid, op, opPC)
	case op <= 0x3F:
		// invalid-polygon range: consume only the opcode, no-op.
	case op <= 0x7F:
		vm.execPoly1(tid, op)
	default:
		vm.execPoly2(tid, op)
	}
}

func (vm *VM) fetchU8(t *thread) uint8 {
	v := vm.Bytecode[t.pc]
	t.pc++
	return v
}

func (vm *VM) fetchU16(t *thread) uint16 {
	hi := uint16(vm.Bytecode[t.pc])
	lo := uint16(vm.Bytecode[t.pc+1])
	t.pc += 2
	return hi<<8 | lo
}

// execCore dispatches the fixed-layout 0x00..0x1A opcode set (spec
// §4.5.1's table).
func (vm *VM) execCore(tid int, op byte, opPC uint16) {
	t := &vm.threads[tid]

	switch op {
	case 0x00: // SETI reg imm
		reg := vm.fetchU8(t)
		imm := vm.fetchU16(t)
		vm.SetReg(reg, imm)

	case 0x01: // SETR dst src
		dst := vm.fetchU8(t)
		src := vm.fetchU8(t)
		vm.SetReg(dst, vm.Reg(src))

	case 0x02: // ADDR dst src
		dst := vm.fetchU8(t)
		src := vm.fetchU8(t)
		vm.SetReg(dst, vm.Reg(dst)+vm.Reg(src))

	case 0x03: // ADDI reg imm
		reg := vm.fetchU8(t)
		imm := vm.fetchU16(t)
		vm.SetReg(reg, vm.Reg(reg)+imm)

	case 0x04: // CALL addr
		addr := vm.fetchU16(t)
		if len(t.callStack) >= maxCallDepth {
			vm.fault(errs.Errorf(errs.InvalidInstruction, opPC, op))
			return
		}
		t.callStack = append(t.callStack, t.pc)
		if !vm.seek(t, addr, opPC, op) {
			return
		}

	case 0x05: // RET
		if len(t.callStack) == 0 {
			vm.fault(errs.Errorf(errs.InvalidInstruction, opPC, op))
			return
		}
		ret := t.callStack[len(t.callStack)-1]
		t.callStack = t.callStack[:len(t.callStack)-1]
		t.pc = ret

	case 0x06: // YIELD
		vm.yielded = true

	case 0x07: // JUMP addr
		addr := vm.fetchU16(t)
		vm.seek(t, addr, opPC, op)

	case 0x08: // START tid addr
		target := vm.fetchU8(t)
		addr := vm.fetchU16(t)
		if int(target) < numThreads {
			vm.threads[target].pcNext = addr
			vm.threads[target].hasPCNext = true
			vm.threads[target].stateNext = Running
			vm.threads[target].hasStateNext = true
		}

	case 0x09: // DBRA reg addr
		reg := vm.fetchU8(t)
		addr := vm.fetchU16(t)
		v := vm.Reg(reg) - 1
		vm.SetReg(reg, v)
		if v != 0 {
			vm.seek(t, addr, opPC, op)
		}

	case 0x0A: // CJMP
		vm.execCJMP(t)

	case 0x0B: // FADE imm
		imm := vm.fetchU16(t)
		if vm.Framebuffer != nil {
			vm.Framebuffer.ApplyPalette(int(imm >> 8))
		}

	case 0x0C: // RESET first last mode
		first := vm.fetchU8(t)
		last := vm.fetchU8(t)
		mode := vm.fetchU8(t)
		vm.execReset(first, last, mode)

	case 0x0D: // PAGE page
		page := vm.fetchU8(t)
		if vm.Framebuffer != nil {
			vm.Framebuffer.SelectPage(page)
		}

	case 0x0E: // FILL page color
		page := vm.fetchU8(t)
		color := vm.fetchU8(t)
		if vm.Framebuffer != nil {
			vm.Framebuffer.FillPage(page, color)
		}

	case 0x0F: // COPY dst src
		dst := vm.fetchU8(t)
		src := vm.fetchU8(t)
		if vm.Framebuffer != nil {
			vscroll := int(signed16(vm.Reg(VarScrollY)))
			vm.Framebuffer.CopyPage(dst, src, vscroll)
		}

	case 0x10: // SHOW page
		page := vm.fetchU8(t)
		if vm.Framebuffer != nil {
			vm.Framebuffer.SelectPage(page)
			vm.Framebuffer.SwapPages()
		}
		vm.yielded = true

	case 0x11: // HALT
		t.pc = 0xFFFF
		t.state = Paused
		vm.yielded = true

	case 0x12: // PRINT str_id x y color
		strID := vm.fetchU16(t)
		x := vm.fetchU8(t)
		y := vm.fetchU8(t)
		color := vm.fetchU8(t)
		if vm.Rasterizer != nil {
			vm.Rasterizer.DrawString(vm.Strings, strID, int(x), int(y), color)
		}

	case 0x13: // SUBR dst src
		dst := vm.fetchU8(t)
		src := vm.fetchU8(t)
		vm.SetReg(dst, vm.Reg(dst)-vm.Reg(src))

	case 0x14: // ANDI reg imm
		reg := vm.fetchU8(t)
		imm := vm.fetchU16(t)
		vm.SetReg(reg, vm.Reg(reg)&imm)

	case 0x15: // IORI reg imm
		reg := vm.fetchU8(t)
		imm := vm.fetchU16(t)
		vm.SetReg(reg, vm.Reg(reg)|imm)

	case 0x16: // LSLI reg imm
		reg := vm.fetchU8(t)
		imm := vm.fetchU16(t)
		vm.SetReg(reg, vm.Reg(reg)<<(imm&0x0F))

	case 0x17: // LSRI reg imm
		reg := vm.fetchU8(t)
		imm := vm.fetchU16(t)
		vm.SetReg(reg, vm.Reg(reg)>>(imm&0x0F))

	case 0x18: // SOUND res freq vol ch
		res := vm.fetchU16(t)
		freq := vm.fetchU8(t)
		vol := vm.fetchU8(t)
		ch := vm.fetchU8(t)
		if vm.Mixer != nil {
			if err := vm.Mixer.Play(res, freq, vol, ch); err != nil {
				logger.Logf(vm.perm, "vm", "SOUND 0x%04x failed: %v", res, err)
			}
		}

	case 0x19: // LOAD res
		res := vm.fetchU16(t)
		vm.execLoad(res)

	case 0x1A: // MUSIC res delay pos
		res := vm.fetchU16(t)
		delay := vm.fetchU16(t)
		pos := vm.fetchU8(t)
		vm.execMusic(res, delay, pos)

	default:
		vm.fault(errs.Errorf(errs.InvalidInstruction, opPC, op))
	}
}

// seek sets t.pc = addr after validating it lies within the current
// bytecode (spec §4.5.4: "Jump target outside current bytecode length ->
// fatal"). Returns false if the VM was faulted.
func (vm *VM) seek(t *thread, addr uint16, opPC uint16, op byte) bool {
	if int(addr) >= len(vm.Bytecode) {
		vm.fault(errs.Errorf(errs.InvalidInstruction, opPC, op))
		return false
	}
	t.pc = addr
	return true
}

// execReset applies RESET's three modes to threads first..last inclusive
// (spec §4.5.1, resolved in SPEC_FULL.md's Open Question Resolutions #2):
// mode 0 resumes with pc untouched, mode 1 pauses with pc untouched, mode
// 2 pauses and forces pc to the unreachable address 0xFFFF. All three are
// deferred to the next commit phase, consistent with how RESET can target
// a thread other than the one executing it.
func (vm *VM) execReset(first, last, mode uint8) {
	for tid := int(first); tid <= int(last) && tid < numThreads; tid++ {
		th := &vm.threads[tid]
		switch mode {
		case 0:
			th.stateNext = Running
			th.hasStateNext = true
		case 1:
			th.stateNext = Paused
			th.hasStateNext = true
		case 2:
			th.stateNext = Paused
			th.hasStateNext = true
			th.pcNext = 0xFFFF
			th.hasPCNext = true
		}
	}
}

// execLoad implements LOAD's dual meaning (spec §4.5.1): a part id
// defers a full part change to the engine; any other id is an ordinary
// resource load request, with an unknown id logged and otherwise
// ignored (spec §4.5.4).
func (vm *VM) execLoad(res uint16) {
	if resource.IsPart(res) {
		vm.pendingPart = res
		vm.hasPendingPart = true
		vm.yielded = true
		return
	}
	if vm.Resources == nil {
		return
	}
	if err := vm.Resources.RequestLoad(res); err != nil {
		logger.Logf(vm.perm, "vm", "LOAD 0x%04x: %v", res, err)
	}
}

// execMusic starts (or restarts) the music sequencer's track. The
// sequencer itself lives on the audio thread; the VM only records what
// was requested via a callback the engine wires up, since starting
// playback touches the mixer/sequencer pair the VM does not own.
func (vm *VM) execMusic(res uint16, delay uint16, pos uint8) {
	if vm.OnMusic != nil {
		vm.OnMusic(res, delay, pos)
	}
}
