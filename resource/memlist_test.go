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
	"bytes"
	"testing"
)

func record(state, typ, rank, bankID byte, bankOffset uint32, packed, unpacked uint16) []byte {
	b := make([]byte, memListRecordSize)
	b[0] = state
	b[1] = typ
	b[6] = rank
	b[7] = bankID
	b[8] = byte(bankOffset >> 24)
	b[9] = byte(bankOffset >> 16)
	b[10] = byte(bankOffset >> 8)
	b[11] = byte(bankOffset)
	b[14] = byte(packed >> 8)
	b[15] = byte(packed)
	b[18] = byte(unpacked >> 8)
	b[19] = byte(unpacked)
	return b
}

func TestParseMemList(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(record(0, byte(TypeBytecode), 1, 1, 0x100, 200, 400))
	buf.Write(record(0, byte(TypePalette), 2, 1, 0x200, 100, 100))
	buf.Write(record(0xFF, 0, 0, 0, 0, 0, 0)) // terminator

	got, err := parseMemList(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d resources, want 2", len(got))
	}
	if got[0].Type != TypeBytecode || got[0].BankOffset != 0x100 || got[0].PackedSize != 200 || got[0].UnpackedSize != 400 {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].ID != 1 || got[1].Type != TypePalette {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
}

func TestParseMemListMissingTerminator(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(record(0, byte(TypeBytecode), 1, 1, 0, 10, 10))
	if _, err := parseMemList(&buf); err == nil {
		t.Fatalf("expected error for missing terminator")
	}
}
