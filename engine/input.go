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

package engine

import (
	"github.com/anotherworld-vm/engine/backend"
	"github.com/anotherworld-vm/engine/vm"
)

// applyInput writes one frame's polled input into the VM registers named
// by spec §6.5. Spec §6.5 gives each register's purpose (a hero position
// axis, the action button, the last key pressed) but not its exact bit
// layout; VarHeroPosMask/VarHeroActionPosMask below are a reconstruction,
// combining the axis and button state into a single mask the bytecode's
// own comparisons expect, the same way the up/down axis is reused for
// both "jump" and "crouch" by VarHeroPosJumpDown in the original game.
func (e *Engine) applyInput(in backend.InputState) {
	e.vm.SetReg(vm.VarHeroPosLeftRight, uint16(int16(in.Horz)))
	e.vm.SetReg(vm.VarHeroPosUpDown, uint16(int16(in.Vert)))
	e.vm.SetReg(vm.VarHeroPosJumpDown, uint16(int16(in.Vert)))

	action := uint16(0)
	if in.Button {
		action = 1
	}
	e.vm.SetReg(vm.VarHeroAction, action)
	e.vm.SetReg(vm.VarInputKey, uint16(in.Key))

	var posMask uint16
	if in.Horz < 0 {
		posMask |= 1 << 0 // left
	} else if in.Horz > 0 {
		posMask |= 1 << 1 // right
	}
	if in.Vert < 0 {
		posMask |= 1 << 2 // up
	} else if in.Vert > 0 {
		posMask |= 1 << 3 // down
	}
	e.vm.SetReg(vm.VarHeroPosMask, posMask)

	actionMask := posMask
	if in.Button {
		actionMask |= 1 << 7
	}
	e.vm.SetReg(vm.VarHeroActionPosMask, actionMask)
}
