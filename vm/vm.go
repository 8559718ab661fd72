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

// Package vm implements the bytecode interpreter: 256 registers, 64
// cooperative threads, the core opcode set, and the two-phase
// commit/run scheduler (spec §3.3, §4.5).
package vm

import (
	"sync/atomic"

	"github.com/anotherworld-vm/engine/audio"
	"github.com/anotherworld-vm/engine/logger"
	"github.com/anotherworld-vm/engine/raster"
	"github.com/anotherworld-vm/engine/resource"
	"github.com/anotherworld-vm/engine/video"
)

const numThreads = 64
const maxCallDepth = 256

// Named register indices that carry engine-defined meaning (spec §6.5).
// Every other index is an ordinary general-purpose slot.
const (
	VarRandomSeed         = 0x3C
	VarInputKey           = 0xDA
	VarHeroPosUpDown      = 0xE5
	VarMusicMark          = 0xF4
	VarScrollY            = 0xF7
	VarScrollYAlt         = 0xF9
	VarHeroAction         = 0xFA
	VarHeroPosJumpDown    = 0xFB
	VarHeroPosLeftRight   = 0xFC
	VarHeroPosMask        = 0xFD
	VarHeroActionPosMask  = 0xFE
	VarPauseSlices        = 0xFF
)

// ThreadState is a cooperative thread's run state (spec §3.6).
type ThreadState uint8

const (
	Paused ThreadState = iota
	Running
)

// thread is one of the 64 fixed instruction-stream contexts (spec §9's
// "Cooperative threads": value records in a fixed array, no OS threads).
type thread struct {
	pc    uint16
	state ThreadState

	// pcNext/stateNext are written by START/RESET and applied by the
	// scheduler's commit phase, never immediately (spec §4.5.3).
	pcNext     uint16
	hasPCNext  bool
	stateNext  ThreadState
	hasStateNext bool

	callStack []uint16
}

// VM owns the register file, the 64 thread slots, and the subsystems an
// opcode handler may need to call into (rasterizer, mixer, resource
// manager). Its register file is not exposed directly (spec §9's "Global
// VM state" note); callers use Reg/SetReg and the dedicated music-mark
// accessors.
type VM struct {
	regs    [256]uint16
	threads [numThreads]thread

	musicMark uint32 // backs VarMusicMark; written by the audio thread via atomic store

	Bytecode         []byte
	CinematicSegment []byte
	SubCinematicSegment []byte

	Rasterizer  *raster.Rasterizer
	Mixer       *audio.Mixer
	Resources   *resource.Manager
	Framebuffer *video.Framebuffer
	Strings     raster.StringTable

	// OnMusic is invoked by the MUSIC opcode; the engine wires it to load
	// the requested track resource and hand it to the audio.Sequencer,
	// since track setup needs the resource manager and the sequencer, both
	// of which live above the VM in the dependency graph.
	OnMusic func(resourceID uint16, delay uint16, startPattern uint8)

	// pendingPart is set by a LOAD of a part id (spec §4.5.1's "request_part"
	// case) and consumed by the engine after the current frame's run phase,
	// since a part change invalidates the very bytecode/segments the thread
	// that issued it is executing from.
	pendingPart    uint16
	hasPendingPart bool

	perm logger.Permission

	// yielded is set by the current opcode handler when the thread should
	// stop executing for this frame: YIELD, HALT, SHOW, a LOAD of a part
	// id, or a fatal fault (spec §4.5.3). SOUND and MUSIC never set it.
	yielded bool

	// halted is set once by a fatal error; the scheduler stops calling step
	// once true.
	halted    bool
	haltError error
}

// New creates a VM with every thread Paused and pc=0xFFFF except thread 0,
// which starts Running at pc=0 (the part's bytecode entry point).
func New(perm logger.Permission) *VM {
	if perm == nil {
		perm = logger.Allow
	}
	vm := &VM{perm: perm}
	vm.ResetThreads()
	return vm
}

// ResetThreads restores every thread to its part-load default: all
// Paused at pc=0xFFFF except thread 0, Running at pc=0 (spec §3.6, run on
// every load_part per §4.2's invalidate_all/part-change sequencing).
func (vm *VM) ResetThreads() {
	for i := range vm.threads {
		vm.threads[i] = thread{pc: 0xFFFF, state: Paused, callStack: make([]uint16, 0, 8)}
	}
	vm.threads[0].pc = 0
	vm.threads[0].state = Running
	vm.halted = false
	vm.haltError = nil
}

// Reg reads register i. Reading VarMusicMark goes through an atomic load
// since it is written concurrently by the audio thread.
func (vm *VM) Reg(i uint8) uint16 {
	if i == VarMusicMark {
		return uint16(atomic.LoadUint32(&vm.musicMark))
	}
	return vm.regs[i]
}

// SetReg writes register i. Writing VarMusicMark goes through the same
// atomic word Reg reads, in case bytecode ever clears it directly rather
// than only reading what the audio thread last set.
func (vm *VM) SetReg(i uint8, v uint16) {
	if i == VarMusicMark {
		atomic.StoreUint32(&vm.musicMark, uint32(v))
		return
	}
	vm.regs[i] = v
}

// MusicMarkPtr exposes the backing word for the sequencer's atomic store
// (spec §5: single-writer audio thread, single-reader VM, relaxed atomic).
// It is a *uint32 rather than *uint16 so the standard atomic package can
// operate on it directly; only the low 16 bits are ever meaningful.
func (vm *VM) MusicMarkPtr() *uint32 {
	return &vm.musicMark
}

// Halted reports whether a fatal error has stopped the VM, and the error
// that caused it.
func (vm *VM) Halted() (bool, error) {
	return vm.halted, vm.haltError
}

func (vm *VM) fault(err error) {
	vm.halted = true
	vm.haltError = err
	vm.yielded = true
}

// PendingPart reports the part id requested by a LOAD-of-a-part opcode
// during the most recent run phase, if any.
func (vm *VM) PendingPart() (uint16, bool) {
	return vm.pendingPart, vm.hasPendingPart
}

// ClearPendingPart is called by the engine once it has actioned
// PendingPart.
func (vm *VM) ClearPendingPart() {
	vm.hasPendingPart = false
}

// signed16 reinterprets a register's bit pattern as a signed value for
// CJMP's signed comparators (spec §4.5.2).
func signed16(v uint16) int16 {
	return int16(v)
}
