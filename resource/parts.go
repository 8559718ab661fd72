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

package resource

// Part identifiers. These are pseudo resource ids: the bytecode issues a
// LOAD against one of these instead of a real resource id, and the
// resource manager recognises the range and triggers a part change
// instead of a regular load (spec §3.2, §4.5.1's LOAD opcode).
const (
	PartCopyProtection uint16 = 0x3E80
	PartIntro          uint16 = 0x3E81
	PartWater          uint16 = 0x3E82
	PartPrison         uint16 = 0x3E83
	PartCite           uint16 = 0x3E84
	PartArene          uint16 = 0x3E85
	PartLuxe           uint16 = 0x3E86
	PartFinal          uint16 = 0x3E87
	PartPassword       uint16 = 0x3E88
)

// partResources maps each part id to its four resource ids: palette,
// bytecode, cinematic polygons, and an optional sub-cinematic polygon
// bank (0 when the part has none). This is the same table the original
// data's part loader is built around.
var partResources = map[uint16][4]uint16{
	PartCopyProtection: {0x14, 0x15, 0x16, 0x00},
	PartIntro:          {0x17, 0x18, 0x19, 0x00},
	PartWater:          {0x1A, 0x1B, 0x1C, 0x11},
	PartPrison:         {0x1D, 0x1E, 0x1F, 0x11},
	PartCite:           {0x20, 0x21, 0x22, 0x11},
	PartArene:          {0x23, 0x24, 0x25, 0x00},
	PartLuxe:           {0x26, 0x27, 0x28, 0x11},
	PartFinal:          {0x29, 0x2A, 0x2B, 0x11},
	PartPassword:       {0x7D, 0x7E, 0x7F, 0x00},
}

// PartOrder gives the `--part <n>` CLI index (spec §6.7) meaning: index 0
// is the copy-protection screen, 1 is the game's actual opening (the CLI
// flag's documented default), and so on through the game's nine parts.
var PartOrder = [...]uint16{
	PartCopyProtection,
	PartIntro,
	PartWater,
	PartPrison,
	PartCite,
	PartArene,
	PartLuxe,
	PartFinal,
	PartPassword,
}

// PartByIndex resolves a `--part` CLI index to a part id.
func PartByIndex(n int) (uint16, bool) {
	if n < 0 || n >= len(PartOrder) {
		return 0, false
	}
	return PartOrder[n], true
}

// IsPart reports whether id names a part rather than a concrete resource.
func IsPart(id uint16) bool {
	_, ok := partResources[id]
	return ok
}

// PartResources returns the four resource ids bound when part id is
// loaded.
func PartResources(id uint16) ([4]uint16, bool) {
	v, ok := partResources[id]
	return v, ok
}
