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

// Frame runs one engine frame: the commit phase applies any pcNext/
// stateNext writes queued by the previous frame's opcodes, then the run
// phase steps every Running thread in order 0..63 until it yields (spec
// §4.5.3). It stops early, leaving remaining threads untouched, if the
// VM has halted on a fatal error.
func (vm *VM) Frame() {
	vm.commit()

	for tid := 0; tid < numThreads; tid++ {
		if vm.halted {
			return
		}
		if vm.threads[tid].state != Running {
			continue
		}
		vm.step(tid)
	}
}

// commit applies every thread's pending pcNext/stateNext writes (spec
// §4.5.3's commit phase).
func (vm *VM) commit() {
	for i := range vm.threads {
		t := &vm.threads[i]
		if t.hasPCNext {
			t.pc = t.pcNext
			t.hasPCNext = false
		}
		if t.hasStateNext {
			t.state = t.stateNext
			t.hasStateNext = false
		}
	}
}

// ThreadState returns thread tid's current run state, for diagnostics.
func (vm *VM) ThreadState(tid int) ThreadState {
	return vm.threads[tid].state
}

// ThreadPC returns thread tid's current program counter, for diagnostics.
func (vm *VM) ThreadPC(tid int) uint16 {
	return vm.threads[tid].pc
}
