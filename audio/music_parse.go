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

import (
	"encoding/binary"

	"github.com/anotherworld-vm/engine/errs"
)

const numInstruments = 15

// ParseMusicResource decodes a music resource's raw bytes into a
// MusicTrack (spec §3.5, §4.7): a pattern-offset table, 15 fixed
// instrument slots, then the pattern event bytes themselves.
//
//	num_patterns:u16 BE
//	pattern_table[num_patterns]:u16 BE   -- byte offset into the pattern
//	                                         block below, or EndOfStream
//	instruments[15]:{resource_id:u16 BE, volume:u8}
//	patterns: remaining bytes
//
// spec §4.7 describes a music resource only as "a stream of 3-byte
// events" plus a pattern table and 15 instrument slots; it does not give
// a concrete container layout for how those pieces are packed into one
// resource's bytes. No music resource format survives in
// original_source/ (tooling-only) or the example repos, so this layout
// is a reconstruction built to hold exactly the fields spec §3.5's
// MusicTrack names, not a transcription; see DESIGN.md.
func ParseMusicResource(data []byte, startPattern, delayTicks int) (*MusicTrack, error) {
	if len(data) < 2 {
		return nil, errs.Errorf(errs.CorruptAsset, "music resource too short for pattern count")
	}
	numPatterns := int(binary.BigEndian.Uint16(data[0:2]))

	tableStart := 2
	tableEnd := tableStart + numPatterns*2
	instrEnd := tableEnd + numInstruments*3
	if len(data) < instrEnd {
		return nil, errs.Errorf(errs.CorruptAsset, "music resource truncated before instrument table")
	}

	table := make([]uint16, numPatterns)
	for i := 0; i < numPatterns; i++ {
		off := tableStart + i*2
		table[i] = binary.BigEndian.Uint16(data[off : off+2])
	}

	var instruments [numInstruments]InstrumentRef
	for i := 0; i < numInstruments; i++ {
		off := tableEnd + i*3
		instruments[i] = InstrumentRef{
			ResourceID: binary.BigEndian.Uint16(data[off : off+2]),
			Volume:     data[off+2],
		}
	}

	return NewMusicTrack(data[instrEnd:], table, instruments, startPattern, delayTicks), nil
}
