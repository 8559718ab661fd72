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

package raster_test

import (
	"testing"

	"github.com/anotherworld-vm/engine/raster"
	"github.com/anotherworld-vm/engine/video"
)

func countColor(fb *video.Framebuffer, color uint8) int {
	p := fb.Page(0x00)
	n := 0
	for _, b := range p {
		if b>>4 == color {
			n++
		}
		if b&0x0F == color {
			n++
		}
	}
	return n
}

func TestDrawSquareFillsBoundingBox(t *testing.T) {
	fb := video.New()
	fb.SelectPage(0x00)
	r := raster.New(fb, nil)

	// a flat square: 10x10 box, default zoom (0x40 == 1.0x). Vertices are
	// ordered left-top, left-bottom, right-bottom, right-top: the filler
	// walks the first half of the list forward and the second half
	// backward, meeting at the bottom, so both halves must trace their
	// own side of the shape top-to-bottom.
	segment := []byte{
		0xFF, // flat polygon form
		10, 10, 4,
		0, 0,
		0, 10,
		10, 10,
		10, 0,
	}

	if err := r.Draw(segment, 0, raster.Point{X: 160, Y: 100}, 0x40, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := countColor(fb, 5)
	if got == 0 {
		t.Fatalf("expected some pixels painted with color 5, got none")
	}
}

func TestDrawDegenerateSingleVertexDrawsOnePixel(t *testing.T) {
	fb := video.New()
	fb.SelectPage(0x00)
	r := raster.New(fb, nil)

	segment := []byte{
		0xFF,
		0, 0, 4,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	if err := r.Draw(segment, 0, raster.Point{X: 100, Y: 50}, 0x40, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := fb.Page(0x00)
	byteOff := 50*video.Width/2 + 100/2
	nibble := p[byteOff] >> 4 // x=100 is even: paintRun writes the high nibble
	if nibble != 3 {
		t.Fatalf("got nibble %#x, want 3", nibble)
	}
}

func TestDrawClampsExcessiveVertexCount(t *testing.T) {
	fb := video.New()
	r := raster.New(fb, nil)

	segment := make([]byte, 3+60*2)
	segment[0] = 0xFF
	segment[1] = 10
	segment[2] = 10
	segment[3] = 60 // exceeds the 50-vertex clamp
	if err := r.Draw(segment, 0, raster.Point{X: 160, Y: 100}, 0x40, 1); err != nil {
		t.Fatalf("expected clamping rather than an error: %v", err)
	}
}
