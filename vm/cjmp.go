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

// execCJMP decodes and executes CJMP (opcode 0x0A), spec §4.5.2: variant
// byte selects the rhs operand's width/source, and its low 3 bits select
// the comparator.
func (vm *VM) execCJMP(t *thread) {
	opPC := t.pc - 1
	variant := vm.fetchU8(t)
	reg1 := vm.fetchU8(t)

	var rhs int16
	switch {
	case variant&0x80 != 0:
		rhs = signed16(vm.Reg(vm.fetchU8(t)))
	case variant&0x40 != 0:
		rhs = signed16(vm.fetchU16(t))
	default:
		rhs = int16(int8(vm.fetchU8(t))) // sign-extended i8
	}

	addr := vm.fetchU16(t)
	lhs := signed16(vm.Reg(reg1))

	var taken bool
	switch variant & 0x07 {
	case 0:
		taken = lhs == rhs
	case 1:
		taken = lhs != rhs
	case 2:
		taken = lhs > rhs
	case 3:
		taken = lhs >= rhs
	case 4:
		taken = lhs < rhs
	case 5:
		taken = lhs <= rhs
	default:
		taken = false
	}

	if taken {
		vm.seek(t, addr, opPC, 0x0A)
	}
}
