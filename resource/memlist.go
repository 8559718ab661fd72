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

import (
	"encoding/binary"
	"io"

	"github.com/anotherworld-vm/engine/errs"
)

const memListRecordSize = 20

// parseMemList reads fixed-size 20-byte records until it sees the
// terminator (state == 0xFF), per spec §6.1:
//
//	state:u8 type:u8 buf_ptr:u16 unused:u16
//	rank:u8 bank_id:u8 bank_offset:u32
//	unused2:u16 packed_size:u16 unused3:u16 unpacked_size:u16
func parseMemList(r io.Reader) ([]Resource, error) {
	var out []Resource
	buf := make([]byte, memListRecordSize)

	for id := uint16(0); ; id++ {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return nil, errs.Errorf(errs.CorruptAsset, "memlist missing end-of-list terminator")
		}
		if err != nil {
			return nil, errs.Errorf(errs.CorruptAsset, err)
		}

		state := LoadState(buf[0])
		if state == EndOfList {
			return out, nil
		}

		out = append(out, Resource{
			ID:           id,
			State:        state,
			Type:         Type(buf[1]),
			Rank:         buf[6],
			BankID:       buf[7],
			BankOffset:   binary.BigEndian.Uint32(buf[8:12]),
			PackedSize:   binary.BigEndian.Uint16(buf[14:16]),
			UnpackedSize: binary.BigEndian.Uint16(buf[18:20]),
		})
	}
}
