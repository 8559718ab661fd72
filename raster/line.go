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

package raster

import "github.com/anotherworld-vm/engine/video"

// drawLine paints one scanline from x0 to x1 (inclusive, in either order)
// at row y, dispatching on color into the three modes of spec §4.4.3.
func (r *Rasterizer) drawLine(x0, x1, y int, color uint8) {
	if y < 0 || y >= video.Height {
		return
	}
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if x1 < 0 || x0 >= video.Width {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > video.Width-1 {
		x1 = video.Width - 1
	}

	page := r.fb.WorkPage()
	rowStart := y * video.Width / 2

	switch {
	case color < 0x10:
		r.paintRun(page, rowStart, x0, x1, color)
	case color == 0x10:
		r.blendRun(page, rowStart, x0, x1)
	default:
		src := r.fb.Page(r.SourcePage)
		r.copyRun(page, src, rowStart, x0, x1)
	}
}

// paintRun writes color into every pixel spanning [x0,x1] ("plain" line
// mode), preserving the untouched nibble of the byte at each end of the
// run.
func (r *Rasterizer) paintRun(page *[video.PageSize]byte, rowStart, x0, x1 int, color byte) {
	color &= 0x0F
	for x := x0; x <= x1; x++ {
		byteOff := rowStart + x/2
		if x%2 == 0 {
			page[byteOff] = (page[byteOff] & 0x0F) | (color << 4)
		} else {
			page[byteOff] = (page[byteOff] & 0xF0) | color
		}
	}
}

// blendRun ORs the transparency nibble (0x8) into the left or right pixel
// of every byte spanning [x0,x1] (spec §4.4.3's "blend" mode): the
// destination nibble is not replaced, only OR'd, so the game's palette
// convention of pairing color N with a dimmed variant at N|8 survives
// whatever was already drawn underneath.
func (r *Rasterizer) blendRun(page *[video.PageSize]byte, rowStart, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		byteOff := rowStart + x/2
		if x%2 == 0 {
			page[byteOff] |= 0x80
		} else {
			page[byteOff] |= 0x08
		}
	}
}

// copyRun copies the corresponding pixel from src into dst for every x in
// [x0,x1] ("copy" line mode, color > 0x10).
func (r *Rasterizer) copyRun(dst, src *[video.PageSize]byte, rowStart, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		byteOff := rowStart + x/2
		sv := src[byteOff]
		var pix byte
		if x%2 == 0 {
			pix = (sv >> 4) & 0x0F
			dst[byteOff] = (dst[byteOff] & 0x0F) | (pix << 4)
		} else {
			pix = sv & 0x0F
			dst[byteOff] = (dst[byteOff] & 0xF0) | pix
		}
	}
}

// DrawBitmap copies a raw 320x200 4bpp frame as-is into dstPage (spec
// §4.4.4).
func (r *Rasterizer) DrawBitmap(data []byte, dstPage uint8) {
	page := r.fb.Page(dstPage)
	copy(page[:], data)
}
