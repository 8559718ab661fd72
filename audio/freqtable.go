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

package audio

// freqTable maps a SOUND/MUSIC frequency index (0..39) to a playback
// rate in Hz, modelled on the standard Amiga Paula PAL clock divided by
// successive period values (spec §4.6: "standard Amiga Paula rates").
// The exact 40 divisors used by the original engine's data files aren't
// present in any retrieved reference material, so this table is
// reconstructed from the well-known Paula period formula
// (rate = 3546895 / period) rather than transcribed from source; see
// DESIGN.md for the same caveat as resource/parts.go's id table.
var freqTable = func() [40]uint32 {
	const paulaClock = 3546895
	var periods = [40]uint32{
		1076, 1016, 960, 906, 856, 808, 762, 720, 678, 640,
		604, 570, 538, 508, 480, 453, 428, 404, 381, 360,
		339, 320, 302, 285, 269, 254, 240, 226, 214, 202,
		190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
	}
	var t [40]uint32
	for i, p := range periods {
		t[i] = paulaClock / p
	}
	return t
}()

// stepFor converts a frequency index into a Q16.16 per-frame position
// step at the mixer's output sample rate. Indices outside 0..39 clamp
// to the table's last entry.
func stepFor(freqIndex uint8) uint32 {
	idx := int(freqIndex)
	if idx >= len(freqTable) {
		idx = len(freqTable) - 1
	}
	return uint32((uint64(freqTable[idx]) << 16) / SampleRate)
}
