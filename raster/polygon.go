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

// Package raster implements the polygon rasterizer: segment parsing
// (flat/hierarchical/simple forms), the dual-edge fixed-point scanline
// filler, the three line-drawing modes, and bitmap/text blitting (spec
// §4.4).
package raster

import (
	"fmt"

	"github.com/anotherworld-vm/engine/errs"
	"github.com/anotherworld-vm/engine/logger"
)

// maxVertices is the hard clamp on a flat polygon's point count (spec
// §4.4.1, §4.5.4).
const maxVertices = 50

// maxHierarchyDepth bounds recursion through child polygon records (spec
// §4.4.1).
const maxHierarchyDepth = 10

// point is a polygon vertex, already zoom-scaled (spec §4.4.1).
type point struct {
	x, y int
}

// polygon is a parsed flat polygon ready for filling.
type polygon struct {
	bbw, bbh int
	points   []point
}

// Point is a screen-space position (the position argument to Draw).
type Point struct {
	X, Y int
}

// Draw renders the polygon hierarchy at offset o in segment into the
// framebuffer's work page, centered at pos, scaled by zoom/64. color is
// passed down to hierarchy children that carry no color word of their own
// and is used by flat (0xFF-form) records, which draw in color 0 when it
// is 0xFF; single-polygon records always draw in their own embedded color.
func (r *Rasterizer) Draw(segment []byte, o int, pos Point, zoom int, color uint8) error {
	return r.drawNode(segment, o, pos, zoom, color, 0)
}

func (r *Rasterizer) drawNode(segment []byte, o int, pos Point, zoom int, color uint8, depth int) error {
	if depth > maxHierarchyDepth {
		return errs.Errorf(errs.RasterizerClamp, fmt.Sprintf("polygon hierarchy deeper than %d levels", maxHierarchyDepth))
	}
	if o < 0 || o >= len(segment) {
		return errs.Errorf(errs.CorruptAsset, "polygon offset out of range")
	}

	form := segment[o]
	switch {
	case form == 0xFF:
		poly, err := r.parseFlatPolygon(segment, o+1, zoom)
		if err != nil {
			return err
		}
		c := color
		if c == 0xFF {
			// a flat record has no embedded color of its own; this only
			// happens if it's reached directly rather than via a
			// hierarchy or single-polygon form that resolved one.
			c = 0
		}
		r.fill(poly, pos, c)
		return nil

	case form == 0x02:
		return r.drawHierarchy(segment, o+1, pos, zoom, color, depth)

	default:
		poly, err := r.parseFlatPolygon(segment, o+1, zoom)
		if err != nil {
			return err
		}
		r.fill(poly, pos, form&0x3F)
		return nil
	}
}

// parseFlatPolygon reads `bbw:u8, bbh:u8, n:u8, (x:u8,y:u8)*n` starting at
// off, scaling each coordinate by zoom/64 (spec §4.4.1).
func (r *Rasterizer) parseFlatPolygon(segment []byte, off int, zoom int) (polygon, error) {
	if off+3 > len(segment) {
		return polygon{}, errs.Errorf(errs.CorruptAsset, "truncated polygon header")
	}
	bbw := int(segment[off])
	bbh := int(segment[off+1])
	n := int(segment[off+2])
	off += 3

	if n%2 != 0 {
		return polygon{}, errs.Errorf(errs.CorruptAsset, "odd polygon vertex count")
	}
	clamped := n
	if clamped > maxVertices {
		clamped = maxVertices
		logger.Logf(r.perm, "video", "polygon vertex count %d clamped to %d", n, maxVertices)
	}
	if off+clamped*2 > len(segment) {
		return polygon{}, errs.Errorf(errs.CorruptAsset, "truncated polygon points")
	}

	pts := make([]point, clamped)
	for i := 0; i < clamped; i++ {
		x := int(segment[off+i*2])
		y := int(segment[off+i*2+1])
		pts[i] = point{x: scaleZoom(x, zoom), y: scaleZoom(y, zoom)}
	}

	return polygon{
		bbw:    scaleZoom(bbw, zoom),
		bbh:    scaleZoom(bbh, zoom),
		points: pts,
	}, nil
}

func scaleZoom(v, zoom int) int {
	return v * zoom / 64
}

// drawHierarchy reads a hierarchical record (form byte 0x02 already
// consumed by the caller): parent offsets, a child count, then per-child
// records (spec §4.4.1).
func (r *Rasterizer) drawHierarchy(segment []byte, off int, pos Point, zoom int, color uint8, depth int) error {
	if off+3 > len(segment) {
		return errs.Errorf(errs.CorruptAsset, "truncated hierarchy header")
	}
	parentX := int(segment[off])
	parentY := int(segment[off+1])
	childrenMinusOne := int(segment[off+2])
	off += 3

	base := Point{
		X: pos.X - scaleZoom(parentX, zoom),
		Y: pos.Y - scaleZoom(parentY, zoom),
	}

	for i := 0; i <= childrenMinusOne; i++ {
		if off+4 > len(segment) {
			return errs.Errorf(errs.CorruptAsset, "truncated hierarchy child")
		}
		childOffset := int(segment[off])<<8 | int(segment[off+1])
		childX := int(segment[off+2])
		childY := int(segment[off+3])
		off += 4

		childColor := color
		if childOffset&0x8000 != 0 {
			if off+2 > len(segment) {
				return errs.Errorf(errs.CorruptAsset, "truncated hierarchy child color")
			}
			childColor = segment[off] & 0x7F
			off += 2
		}

		childPos := Point{
			X: base.X + scaleZoom(childX, zoom),
			Y: base.Y + scaleZoom(childY, zoom),
		}
		childOff := int(childOffset&0x7FFF) * 2
		if err := r.drawNode(segment, childOff, childPos, zoom, childColor, depth+1); err != nil {
			return err
		}
	}
	return nil
}
