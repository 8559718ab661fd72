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

import (
	"github.com/anotherworld-vm/engine/logger"
	"github.com/anotherworld-vm/engine/video"
)

// reciprocal is the precomputed 1/k table used by the scanline filler's
// per-edge step computation (spec §4.4.2): reciprocal[k] = 0x4000/k for
// k>0, and reciprocal[0] = 0x4000 (an edge spanning zero scanlines is
// never actually iterated, but the slot must still hold a defined value).
var reciprocal [1024]int

func init() {
	reciprocal[0] = 0x4000
	for k := 1; k < len(reciprocal); k++ {
		reciprocal[k] = 0x4000 / k
	}
}

// Rasterizer draws polygons, lines, bitmaps and text into a framebuffer's
// work page.
type Rasterizer struct {
	fb   *video.Framebuffer
	perm logger.Permission

	// SourcePage is the page "copy" mode line segments (color > 0x10)
	// read from, normally page 0.
	SourcePage uint8
}

// New creates a Rasterizer drawing into fb.
func New(fb *video.Framebuffer, perm logger.Permission) *Rasterizer {
	if perm == nil {
		perm = logger.Allow
	}
	return &Rasterizer{fb: fb, perm: perm}
}

// fill implements the dual-edge scanline filler of spec §4.4.2.
func (r *Rasterizer) fill(p polygon, pos Point, color uint8) {
	if len(p.points) == 0 {
		return
	}

	minX := pos.X - p.bbw/2
	minY := pos.Y - p.bbh/2
	maxX := minX + p.bbw
	maxY := minY + p.bbh
	if maxX < 0 || minX > video.Width-1 || maxY < 0 || minY > video.Height-1 {
		return
	}

	n := len(p.points)
	if n == 4 && (p.bbw <= 1 || p.bbh <= 1) {
		r.drawLine(pos.X, pos.X, pos.Y, color)
		return
	}

	xLeft := (minX + p.points[0].x) << 16
	xRight := (minX + p.points[n-1].x) << 16
	y := minY

	i1, i2 := 0, n-1
	remaining := n
	for remaining > 1 {
		i1Next := i1 + 1
		i2Next := i2 - 1

		dy := p.points[i1Next].y - p.points[i1].y
		stepLeft := edgeStep(p.points[i1Next].x-p.points[i1].x, dy)
		stepRight := edgeStep(p.points[i2Next].x-p.points[i2].x, p.points[i2].y-p.points[i2Next].y)

		xl := xLeft | 0x8000
		xr := xRight | 0x7FFF

		for s := 0; s < dy; s++ {
			r.drawLine(xl>>16, xr>>16, y, color)
			xl += stepLeft
			xr += stepRight
			y++
		}

		xLeft = xl
		xRight = xr

		i1 = i1Next
		i2 = i2Next
		remaining -= 2
	}
}

// edgeStep computes the per-scanline x increment in Q16.16 for an edge
// spanning dx horizontally over dy scanlines (spec §4.4.2 step 1).
func edgeStep(dx, dy int) int {
	if dy == 0 {
		return 0
	}
	idx := dy
	if idx < 0 {
		idx = -idx
	}
	if idx >= len(reciprocal) {
		idx = len(reciprocal) - 1
	}
	return dx * reciprocal[idx] * 4
}
