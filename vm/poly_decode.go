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
	"github.com/anotherworld-vm/engine/raster"
)

// fetchCoord reads one polygon coordinate, reusing the same two flag
// bits spec §4.5.1 assigns to x (op&0x20, op&0x10) for y as well ("x and
// y fetched ... with two bits of adjustment"): the prose doesn't give a
// literal bit table, so this scheme -- immediate byte, byte+0x100, or a
// full big-endian 16-bit read, selected the same way for both axes -- is
// a reconstruction kept internally consistent with the rest of §4.5.1
// rather than a transcription; see DESIGN.md.
func (vm *VM) fetchCoord(t *thread, op byte) int {
	b := vm.fetchU8(t)
	switch {
	case op&0x20 != 0:
		if op&0x10 != 0 {
			return int(b) + 0x100
		}
		return int(b)
	default:
		lo := vm.fetchU8(t)
		return int(b)<<8 | int(lo)
	}
}

// execPoly1 decodes and dispatches a POLY1 opcode (0x40..0x7F): fixed
// zoom, cinematic segment (spec §4.5.1).
func (vm *VM) execPoly1(tid int, op byte) {
	t := &vm.threads[tid]

	offset := int(vm.fetchU16(t)) << 1
	x := vm.fetchCoord(t, op)
	y := vm.fetchCoord(t, op)

	vm.drawPoly(vm.CinematicSegment, offset, x, y, 0x40, 0xFF, false)
}

// execPoly2 decodes and dispatches a POLY2 opcode (0x80..0xFF): the zoom
// source has four cases selected by op&0x03 (SPEC_FULL.md's Open
// Question Resolutions #3), and op&0x40 picks the target segment (spec
// §4.5.1).
func (vm *VM) execPoly2(tid int, op byte) {
	t := &vm.threads[tid]

	offset := int(vm.fetchU16(t)) << 1
	x := vm.fetchCoord(t, op)
	y := vm.fetchCoord(t, op)

	zoom := 0x40
	doubleDraw := false
	switch op & 0x03 {
	case 0x00:
		zoom = 0x40
	case 0x01:
		reg := vm.fetchU8(t)
		zoom = int(vm.Reg(reg))
	case 0x02:
		zoom = int(vm.fetchU8(t))
	case 0x03:
		zoom = 0x40
		doubleDraw = true
	}

	segment := vm.CinematicSegment
	if op&0x40 != 0 {
		segment = vm.SubCinematicSegment
	}

	vm.drawPoly(segment, offset, x, y, zoom, 0xFF, doubleDraw)
}

func (vm *VM) drawPoly(segment []byte, offset, x, y, zoom int, color uint8, doubleDraw bool) {
	if vm.Rasterizer == nil || segment == nil {
		return
	}
	pos := raster.Point{X: x, Y: y}
	if err := vm.Rasterizer.Draw(segment, offset, pos, zoom, color); err != nil {
		if errs.Has(err, errs.RasterizerClamp) {
			logger.Logf(vm.perm, "vm", "%v", err)
		} else {
			logger.Logf(vm.perm, "vm", "polygon draw at offset %d failed: %v", offset, err)
			return
		}
	}
	if doubleDraw {
		_ = vm.Rasterizer.Draw(segment, offset, pos, zoom, color)
	}
}
